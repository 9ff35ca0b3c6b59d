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

	"moviecatalog/person"
)

type personDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Gender      string             `bson:"gender"`
	DateOfBirth time.Time          `bson:"dateOfBirth"`
	Bio         string             `bson:"bio"`
	Photo       string             `bson:"photo,omitempty"`
	IsExternal  bool               `bson:"isExternal"`
	ExternalID  string             `bson:"externalId,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d personDocument) toDomain() person.Person {
	return person.Person{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Gender:      person.Gender(d.Gender),
		DateOfBirth: d.DateOfBirth.UTC(),
		Bio:         d.Bio,
		Photo:       d.Photo,
		IsExternal:  d.IsExternal || d.ExternalID != "",
		ExternalID:  d.ExternalID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// PersonRepository implements [person.Repository] over one collection.
type PersonRepository struct {
	coll *mongo.Collection
	role person.Role
	now  func() time.Time
}

func NewActorRepository(db *mongo.Database) *PersonRepository {
	return newPersonRepository(db.Collection(ActorsCollection), person.RoleActor)
}

func NewProducerRepository(db *mongo.Database) *PersonRepository {
	return newPersonRepository(db.Collection(ProducersCollection), person.RoleProducer)
}

func newPersonRepository(coll *mongo.Collection, role person.Role) *PersonRepository {
	return &PersonRepository{
		coll: coll,
		role: role,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (r *PersonRepository) Count(ctx context.Context, search string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, nameFilter(search))
	if err != nil {
		return 0, fmt.Errorf("mongodb: count %ss: %w", r.role, err)
	}
	return int(n), nil
}

func (r *PersonRepository) List(ctx context.Context, search string, offset, limit int) ([]person.Person, error) {
	opts := page(offset, limit).SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, nameFilter(search), opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: find %ss: %w", r.role, err)
	}

	var docs []personDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decode %ss: %w", r.role, err)
	}

	out := make([]person.Person, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PersonRepository) Get(ctx context.Context, id string) (person.Person, error) {
	var d personDocument
	err := r.coll.FindOne(ctx, idFilter(id)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return person.Person{}, r.role.NotFound()
		}
		return person.Person{}, fmt.Errorf("mongodb: get %s: %w", r.role, err)
	}
	return d.toDomain(), nil
}

func (r *PersonRepository) Create(ctx context.Context, p person.Person) (person.Person, error) {
	now := r.now()
	d := personDocument{
		Name:        p.Name,
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth,
		Bio:         p.Bio,
		Photo:       p.Photo,
		IsExternal:  p.External(),
		ExternalID:  p.ExternalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.coll.InsertOne(ctx, d)
	if err != nil {
		return person.Person{}, fmt.Errorf("mongodb: insert %s: %w", r.role, err)
	}
	d.ID, _ = res.InsertedID.(primitive.ObjectID)
	return d.toDomain(), nil
}

func (r *PersonRepository) Update(ctx context.Context, id string, p person.Person) (person.Person, error) {
	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"gender":      string(p.Gender),
		"dateOfBirth": p.DateOfBirth,
		"bio":         p.Bio,
		"photo":       p.Photo,
		"updatedAt":   r.now(),
	}}

	var d personDocument
	err := r.coll.FindOneAndUpdate(ctx, idFilter(id), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return person.Person{}, r.role.NotFound()
		}
		return person.Person{}, fmt.Errorf("mongodb: update %s: %w", r.role, err)
	}
	return d.toDomain(), nil
}

func (r *PersonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("mongodb: delete %s: %w", r.role, err)
	}
	if res.DeletedCount == 0 {
		return r.role.NotFound()
	}
	return nil
}
