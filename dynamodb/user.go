package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"moviecatalog/user"
)

// UserRepository keeps accounts in a table whose partition key is email.
type UserRepository struct {
	client *dynamodb.Client
	table  string
	now    func() time.Time
	newID  func() string
}

type userItem struct {
	Email        string    `dynamodbav:"email"`
	ID           string    `dynamodbav:"id"`
	Username     string    `dynamodbav:"username"`
	PasswordHash string    `dynamodbav:"password_hash"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
	UpdatedAt    time.Time `dynamodbav:"updated_at"`
}

func (it userItem) toDomain() user.User {
	return user.User{
		ID:           it.ID,
		Username:     it.Username,
		Email:        it.Email,
		PasswordHash: it.PasswordHash,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}

func NewUserRepository(client *dynamodb.Client, table string) *UserRepository {
	return &UserRepository{
		client: client,
		table:  table,
		now: func() time.Time {
			return time.Now().UTC()
		},
		newID: uuid.NewString,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if err := validateTable(r.table); err != nil {
		return user.User{}, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.table,
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return user.User{}, fmt.Errorf("dynamodb: get user: %w", err)
	}
	if len(out.Item) == 0 {
		return user.User{}, user.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return user.User{}, fmt.Errorf("dynamodb: unmarshal user: %w", err)
	}
	return item.toDomain(), nil
}

// GetByID scans for the id. Account lookups by id only back the profile
// endpoint, so the table carries no secondary index for it.
func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	if err := validateTable(r.table); err != nil {
		return user.User{}, err
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:        &r.table,
		FilterExpression: aws.String("#id = :id"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return user.User{}, fmt.Errorf("dynamodb: scan users: %w", err)
		}
		if len(out.Items) == 0 {
			continue
		}

		var item userItem
		if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
			return user.User{}, fmt.Errorf("dynamodb: unmarshal user: %w", err)
		}
		return item.toDomain(), nil
	}

	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if err := validateTable(r.table); err != nil {
		return user.User{}, err
	}

	now := r.now()
	item := userItem{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.ID == "" {
		item.ID = r.newID()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return user.User{}, fmt.Errorf("dynamodb: marshal user: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.table,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return user.User{}, user.ErrEmailAlreadyExists
		}
		return user.User{}, fmt.Errorf("dynamodb: put user: %w", err)
	}

	return item.toDomain(), nil
}
