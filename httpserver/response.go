package httpserver

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"moviecatalog/catalog"
	"moviecatalog/errs"
)

const (
	successMessage   = "OK"
	defaultErrorCode = "100500"
)

type APIResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
	Info    string      `json:"info,omitempty"`
}

// PagedResult is the result of every listing endpoint.
type PagedResult[T any] struct {
	Data  []T `json:"data"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

func writeSuccess(c echo.Context, status int, result interface{}) error {
	return c.JSON(status, APIResponse{
		Code:    strconv.Itoa(status),
		Message: successMessage,
		Result:  result,
	})
}

func writeMessage(c echo.Context, status int, message string) error {
	return writeSuccess(c, status, map[string]string{"message": message})
}

func writePagedList[T any](c echo.Context, status int, p catalog.Page[T]) error {
	data := p.Items
	if data == nil {
		data = []T{}
	}
	return writeSuccess(c, status, PagedResult[T]{
		Data:  data,
		Page:  p.Page,
		Limit: p.PageSize,
		Pages: p.Pages,
		Total: p.Total,
	})
}

func writeError(c echo.Context, status int, message, info string, err error) error {
	return c.JSON(status, APIResponse{
		Code:    errorCode(err, status),
		Message: message,
		Info:    info,
	})
}

func errorCode(err error, status int) string {
	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return "100010"
	case errs.ENOTFOUND:
		return "100404"
	case errs.ECONFLICT:
		return "100409"
	case errs.EUNAUTHORIZED:
		return "100401"
	case errs.EFORBIDDEN:
		return "100403"
	case errs.ENOTIMPLEMENTED:
		return "100501"
	}

	if status != 0 {
		return fmt.Sprintf("100%03d", status)
	}
	return defaultErrorCode
}
