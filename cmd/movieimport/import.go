package main

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"moviecatalog/movie"
)

type movieSource interface {
	GetMovie(ctx context.Context, imdbID string) (movie.Movie, error)
}

type movieStore interface {
	UpsertExternal(ctx context.Context, m movie.Movie) (movie.Movie, error)
}

// collectIDs returns the ids to import. A file wins over the flag list, the
// flag list wins over the configured seeds. Duplicates are dropped.
func collectIDs(flagIDs, file string, seeds []string) ([]string, error) {
	var ids []string
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to open id file")
		}
		defer f.Close()
		if ids, err = readIDs(f); err != nil {
			return nil, err
		}
	case strings.TrimSpace(flagIDs) != "":
		ids = splitIDs(flagIDs)
	default:
		ids = seeds
	}
	return dedupe(ids), nil
}

// readIDs reads the first column of every row that looks like an IMDb id, so
// header rows are skipped.
func readIDs(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var ids []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to read id file")
		}
		if len(record) == 0 {
			continue
		}
		id := strings.TrimSpace(record[0])
		if strings.HasPrefix(id, movie.ExternalPrefix) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// importMovies fetches every id and upserts it. A failing title is logged and
// skipped.
func importMovies(ctx context.Context, src movieSource, dst movieStore, ids []string, log *zap.SugaredLogger) (imported, failed int) {
	for _, id := range ids {
		if ctx.Err() != nil {
			return imported, failed + len(ids) - imported - failed
		}

		m, err := src.GetMovie(ctx, id)
		if err != nil {
			log.Warnw("fetch movie", "imdb_id", id, "error", err)
			failed++
			continue
		}
		if _, err := dst.UpsertExternal(ctx, m); err != nil {
			log.Warnw("store movie", "imdb_id", id, "error", err)
			failed++
			continue
		}
		log.Debugw("imported movie", "imdb_id", id, "name", m.Name)
		imported++
	}
	return imported, failed
}
