package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moviecatalog/auth"
	"moviecatalog/user"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDocument) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// UserRepository implements [user.Repository]. Email uniqueness is enforced
// by the index created in EnsureIndexes.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll: db.Collection(UsersCollection),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	now := r.now()
	d := userDocument{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.coll.InsertOne(ctx, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailAlreadyExists
		}
		return user.User{}, fmt.Errorf("mongodb: insert user: %w", err)
	}
	d.ID, _ = res.InsertedID.(primitive.ObjectID)
	return d.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (user.User, error) {
	var d userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("mongodb: get user: %w", err)
	}
	return d.toDomain(), nil
}

type loginAttemptDocument struct {
	Email       string     `bson:"_id"`
	FailedCount int        `bson:"failedCount"`
	JailedUntil *time.Time `bson:"jailedUntil,omitempty"`
}

// LoginAttemptRepository implements [auth.LoginAttemptRepository], one
// document per email.
type LoginAttemptRepository struct {
	coll *mongo.Collection
}

func NewLoginAttemptRepository(db *mongo.Database) *LoginAttemptRepository {
	return &LoginAttemptRepository{coll: db.Collection(LoginAttemptsCollection)}
}

func (r *LoginAttemptRepository) Get(ctx context.Context, email string) (auth.LoginAttempt, error) {
	var d loginAttemptDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.LoginAttempt{}, nil
		}
		return auth.LoginAttempt{}, fmt.Errorf("mongodb: get login attempt: %w", err)
	}

	attempt := auth.LoginAttempt{FailedCount: d.FailedCount}
	if d.JailedUntil != nil {
		attempt.JailedUntil = d.JailedUntil.UTC()
	}
	return attempt, nil
}

func (r *LoginAttemptRepository) Save(ctx context.Context, email string, attempt auth.LoginAttempt) error {
	d := loginAttemptDocument{Email: email, FailedCount: attempt.FailedCount}
	if !attempt.JailedUntil.IsZero() {
		t := attempt.JailedUntil.UTC()
		d.JailedUntil = &t
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": email}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb: save login attempt: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": email}); err != nil {
		return fmt.Errorf("mongodb: reset login attempt: %w", err)
	}
	return nil
}
