package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"moviecatalog/auth"
)

type loginAttemptItem struct {
	Email       string     `dynamodbav:"email"`
	FailedCount int        `dynamodbav:"failed_count"`
	JailedUntil *time.Time `dynamodbav:"jailed_until,omitempty"`
}

type LoginAttemptRepository struct {
	client *dynamodb.Client
	table  string
}

func NewLoginAttemptRepository(client *dynamodb.Client, table string) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		client: client,
		table:  table,
	}
}

func (r *LoginAttemptRepository) Get(ctx context.Context, email string) (auth.LoginAttempt, error) {
	if err := validateTable(r.table); err != nil {
		return auth.LoginAttempt{}, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.table,
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return auth.LoginAttempt{}, fmt.Errorf("dynamodb: get login attempt: %w", err)
	}
	if len(out.Item) == 0 {
		return auth.LoginAttempt{}, nil
	}

	var item loginAttemptItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return auth.LoginAttempt{}, fmt.Errorf("dynamodb: unmarshal login attempt: %w", err)
	}

	attempt := auth.LoginAttempt{FailedCount: item.FailedCount}
	if item.JailedUntil != nil {
		attempt.JailedUntil = item.JailedUntil.UTC()
	}
	return attempt, nil
}

func (r *LoginAttemptRepository) Save(ctx context.Context, email string, attempt auth.LoginAttempt) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	item := loginAttemptItem{Email: email, FailedCount: attempt.FailedCount}
	if !attempt.JailedUntil.IsZero() {
		t := attempt.JailedUntil.UTC()
		item.JailedUntil = &t
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal login attempt: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.table,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamodb: put login attempt: %w", err)
	}

	return nil
}

func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &r.table,
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb: delete login attempt: %w", err)
	}

	return nil
}
