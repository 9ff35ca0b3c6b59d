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

	"moviecatalog/movie"
)

type movieDocument struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Name          string               `bson:"name"`
	YearOfRelease int                  `bson:"yearOfRelease"`
	Plot          string               `bson:"plot"`
	Poster        string               `bson:"poster"`
	Producer      *primitive.ObjectID  `bson:"producer,omitempty"`
	Actors        []primitive.ObjectID `bson:"actors"`
	Credits       *creditsDocument     `bson:"credits,omitempty"`
	IsExternal    bool                 `bson:"isExternal"`
	ExternalID    string               `bson:"externalId,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

// creditsDocument holds the names of provider-sourced movies, whose people
// are not part of the local catalog.
type creditsDocument struct {
	Producer string   `bson:"producer,omitempty"`
	Actors   []string `bson:"actors,omitempty"`
}

// MovieRepository implements [movie.Repository]. Reads populate producer and
// actor names from their collections.
type MovieRepository struct {
	coll      *mongo.Collection
	actors    *mongo.Collection
	producers *mongo.Collection
	now       func() time.Time
}

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{
		coll:      db.Collection(MoviesCollection),
		actors:    db.Collection(ActorsCollection),
		producers: db.Collection(ProducersCollection),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (r *MovieRepository) Count(ctx context.Context, search string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, nameFilter(search))
	if err != nil {
		return 0, fmt.Errorf("mongodb: count movies: %w", err)
	}
	return int(n), nil
}

func (r *MovieRepository) List(ctx context.Context, search string, offset, limit int) ([]movie.Movie, error) {
	opts := page(offset, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, nameFilter(search), opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: find movies: %w", err)
	}

	var docs []movieDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decode movies: %w", err)
	}
	return r.populate(ctx, docs)
}

func (r *MovieRepository) Get(ctx context.Context, id string) (movie.Movie, error) {
	d, err := r.findOne(ctx, idFilter(id))
	if err != nil {
		return movie.Movie{}, err
	}

	out, err := r.populate(ctx, []movieDocument{d})
	if err != nil {
		return movie.Movie{}, err
	}
	return out[0], nil
}

func (r *MovieRepository) Create(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	d, err := toMovieDocument(m)
	if err != nil {
		return movie.Movie{}, err
	}
	now := r.now()
	d.CreatedAt, d.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, d)
	if err != nil {
		return movie.Movie{}, fmt.Errorf("mongodb: insert movie: %w", err)
	}
	d.ID, _ = res.InsertedID.(primitive.ObjectID)

	m.ID = d.ID.Hex()
	m.CreatedAt, m.UpdatedAt = now, now
	return m, nil
}

func (r *MovieRepository) Update(ctx context.Context, id string, m movie.Movie) (movie.Movie, error) {
	d, err := toMovieDocument(m)
	if err != nil {
		return movie.Movie{}, err
	}

	res, err := r.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M{
		"name":          d.Name,
		"yearOfRelease": d.YearOfRelease,
		"plot":          d.Plot,
		"poster":        d.Poster,
		"producer":      d.Producer,
		"actors":        d.Actors,
		"updatedAt":     r.now(),
	}})
	if err != nil {
		return movie.Movie{}, fmt.Errorf("mongodb: update movie: %w", err)
	}
	if res.MatchedCount == 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return r.Get(ctx, id)
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("mongodb: delete movie: %w", err)
	}
	if res.DeletedCount == 0 {
		return movie.ErrMovieNotFound
	}
	return nil
}

// UpsertExternal stores a provider-sourced movie keyed by its external id.
func (r *MovieRepository) UpsertExternal(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	if m.ExternalID == "" {
		return movie.Movie{}, errors.New("mongodb: external movie without external id")
	}

	credits := &creditsDocument{}
	if m.Producer != nil {
		credits.Producer = m.Producer.Name
	}
	for _, a := range m.Actors {
		credits.Actors = append(credits.Actors, a.Name)
	}

	now := r.now()
	update := bson.M{
		"$set": bson.M{
			"name":          m.Name,
			"yearOfRelease": m.YearOfRelease,
			"plot":          m.Plot,
			"poster":        m.Poster,
			"credits":       credits,
			"actors":        []primitive.ObjectID{},
			"isExternal":    true,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	var d movieDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"externalId": m.ExternalID}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return movie.Movie{}, fmt.Errorf("mongodb: upsert movie %s: %w", m.ExternalID, err)
	}

	out, err := r.populate(ctx, []movieDocument{d})
	if err != nil {
		return movie.Movie{}, err
	}
	return out[0], nil
}

func (r *MovieRepository) findOne(ctx context.Context, filter bson.M) (movieDocument, error) {
	var d movieDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return movieDocument{}, movie.ErrMovieNotFound
		}
		return movieDocument{}, fmt.Errorf("mongodb: get movie: %w", err)
	}
	return d, nil
}

// populate resolves the names of every person referenced by docs with one
// query per collection.
func (r *MovieRepository) populate(ctx context.Context, docs []movieDocument) ([]movie.Movie, error) {
	var producerIDs, actorIDs []primitive.ObjectID
	for _, d := range docs {
		if d.Producer != nil {
			producerIDs = append(producerIDs, *d.Producer)
		}
		actorIDs = append(actorIDs, d.Actors...)
	}

	producers, err := lookupNames(ctx, r.producers, producerIDs)
	if err != nil {
		return nil, err
	}
	actors, err := lookupNames(ctx, r.actors, actorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]movie.Movie, 0, len(docs))
	for _, d := range docs {
		m := movie.Movie{
			ID:            d.ID.Hex(),
			Name:          d.Name,
			YearOfRelease: d.YearOfRelease,
			Plot:          d.Plot,
			Poster:        d.Poster,
			Actors:        make([]movie.Ref, 0, len(d.Actors)),
			IsExternal:    d.IsExternal,
			ExternalID:    d.ExternalID,
			CreatedAt:     d.CreatedAt.UTC(),
			UpdatedAt:     d.UpdatedAt.UTC(),
		}
		if d.Producer != nil {
			m.Producer = &movie.Ref{ID: d.Producer.Hex(), Name: producers[*d.Producer]}
		}
		for _, a := range d.Actors {
			m.Actors = append(m.Actors, movie.Ref{ID: a.Hex(), Name: actors[a]})
		}
		if d.Credits != nil {
			if m.Producer == nil && d.Credits.Producer != "" {
				m.Producer = &movie.Ref{Name: d.Credits.Producer}
			}
			for _, name := range d.Credits.Actors {
				m.Actors = append(m.Actors, movie.Ref{Name: name})
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func toMovieDocument(m movie.Movie) (movieDocument, error) {
	d := movieDocument{
		Name:          m.Name,
		YearOfRelease: m.YearOfRelease,
		Plot:          m.Plot,
		Poster:        m.Poster,
		Actors:        make([]primitive.ObjectID, 0, len(m.Actors)),
		IsExternal:    m.IsExternal,
		ExternalID:    m.ExternalID,
	}

	if id := m.ProducerID(); id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return movieDocument{}, movie.ErrProducerNotFound
		}
		d.Producer = &oid
	}
	for _, id := range m.ActorIDs() {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return movieDocument{}, movie.ErrActorNotFound
		}
		d.Actors = append(d.Actors, oid)
	}
	return d, nil
}
