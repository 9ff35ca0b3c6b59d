package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var errNoTable = errors.New("dynamodb: table name is required")

// Options locate the account tables. Endpoint points at DynamoDB Local
// when set; static keys override the default AWS credential chain.
type Options struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string

	UsersTable         string
	LoginAttemptsTable string
}

// AccountStore holds the DynamoDB backed user and login attempt repositories.
type AccountStore struct {
	Users         *UserRepository
	LoginAttempts *LoginAttemptRepository
}

// OpenAccountStore builds a client for opts and binds both account tables to it.
func OpenAccountStore(ctx context.Context, opts Options) (*AccountStore, error) {
	for _, table := range []string{opts.UsersTable, opts.LoginAttemptsTable} {
		if err := validateTable(table); err != nil {
			return nil, err
		}
	}

	client, err := NewClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &AccountStore{
		Users:         NewUserRepository(client, opts.UsersTable),
		LoginAttempts: NewLoginAttemptRepository(client, opts.LoginAttemptsTable),
	}, nil
}

func NewClient(ctx context.Context, opts Options) (*dynamodb.Client, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		return nil, errors.New("dynamodb: region is required")
	}

	creds, err := credentialOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, append(creds, awscfg.WithRegion(region))...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// credentialOptions returns nothing when no key is set so the default
// credential chain applies.
func credentialOptions(opts Options) ([]func(*awscfg.LoadOptions) error, error) {
	if opts.AccessKey == "" && opts.SecretKey == "" && opts.SessionToken == "" {
		return nil, nil
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("dynamodb: access key and secret key must be set together")
	}
	return []func(*awscfg.LoadOptions) error{
		awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		),
	}, nil
}

func validateTable(table string) error {
	if strings.TrimSpace(table) == "" {
		return errNoTable
	}
	return nil
}
