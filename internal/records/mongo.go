package records

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/maraichr/imagesync/internal/config"
)

// MongoSource reads records from a single MongoDB collection.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
	fields     Fields
}

func NewMongoSource(ctx context.Context, cfg config.MongoConfig, fields Fields) (*MongoSource, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoSource{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		fields:     fields,
	}, nil
}

// Each runs one unfiltered find with a projection of the id, url and name
// fields and decodes documents one at a time.
func (s *MongoSource) Each(ctx context.Context, fn func(Record) error) error {
	projection := bson.D{
		{Key: s.fields.ID, Value: 1},
		{Key: s.fields.URL, Value: 1},
		{Key: s.fields.Name, Value: 1},
	}
	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
	if err != nil {
		return fmt.Errorf("find records: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		if err := fn(s.toRecord(doc)); err != nil {
			return err
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("iterate records: %w", err)
	}
	return nil
}

func (s *MongoSource) toRecord(doc bson.M) Record {
	rec := Record{
		ID:   idString(doc[s.fields.ID]),
		Name: nameValue(doc[s.fields.Name]),
	}
	if v, ok := doc[s.fields.URL]; ok {
		rec.URL, rec.HasURL = urlValue(v)
	}
	return rec
}

// idString renders ObjectIDs as hex, matching how they appear in logs and
// object keys.
func idString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
