package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moviecatalog/movie"
)

// ReferenceResolver implements [movie.References] against the actors and
// producers collections.
type ReferenceResolver struct {
	actors    *mongo.Collection
	producers *mongo.Collection
}

func NewReferenceResolver(db *mongo.Database) *ReferenceResolver {
	return &ReferenceResolver{
		actors:    db.Collection(ActorsCollection),
		producers: db.Collection(ProducersCollection),
	}
}

func (r *ReferenceResolver) Producer(ctx context.Context, id string) (movie.Ref, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return movie.Ref{}, movie.ErrProducerNotFound
	}

	names, err := lookupNames(ctx, r.producers, []primitive.ObjectID{oid})
	if err != nil {
		return movie.Ref{}, err
	}
	name, ok := names[oid]
	if !ok {
		return movie.Ref{}, movie.ErrProducerNotFound
	}
	return movie.Ref{ID: id, Name: name}, nil
}

// Actors returns the actors that exist, in the order of ids.
func (r *ReferenceResolver) Actors(ctx context.Context, ids []string) ([]movie.Ref, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, movie.ErrActorNotFound
		}
		oids = append(oids, oid)
	}

	names, err := lookupNames(ctx, r.actors, oids)
	if err != nil {
		return nil, err
	}

	out := make([]movie.Ref, 0, len(oids))
	for _, oid := range oids {
		if name, ok := names[oid]; ok {
			out = append(out, movie.Ref{ID: oid.Hex(), Name: name})
		}
	}
	return out, nil
}

// lookupNames fetches the names of the given documents in one query.
func lookupNames(ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cur, err := coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongodb: find %s names: %w", coll.Name(), err)
	}

	var docs []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decode %s names: %w", coll.Name(), err)
	}

	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}
