package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMongoSource_ToRecord(t *testing.T) {
	s := &MongoSource{fields: Fields{ID: "_id", Name: "name", URL: "img_url"}}
	oid := bson.NewObjectID()

	rec := s.toRecord(bson.M{"_id": oid, "name": "Widget", "img_url": " https://x.test/a.png "})
	assert.Equal(t, oid.Hex(), rec.ID)
	assert.Equal(t, "Widget", rec.Name)
	assert.Equal(t, "https://x.test/a.png", rec.URL)
	assert.True(t, rec.HasURL)
}

func TestMongoSource_ToRecordMissingURL(t *testing.T) {
	s := &MongoSource{fields: Fields{ID: "_id", Name: "name", URL: "img_url"}}

	tests := []struct {
		name string
		doc  bson.M
	}{
		{"absent", bson.M{"_id": "x1"}},
		{"null", bson.M{"_id": "x1", "img_url": nil}},
		{"blank", bson.M{"_id": "x1", "img_url": "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.toRecord(tt.doc)
			assert.Equal(t, "x1", rec.ID)
			assert.Empty(t, rec.Name)
			assert.False(t, rec.HasURL)
		})
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "42", idString(int32(42)))
	assert.Equal(t, "abc", idString("abc"))
	assert.Equal(t, "", idString(nil))
}

func TestPostgresSource_QueryQuotesIdentifiers(t *testing.T) {
	s := &PostgresSource{table: "products", fields: Fields{ID: "id", Name: "name", URL: "img url"}}
	assert.Equal(t, `SELECT "id"::text, "img url"::text, "name"::text FROM "products"`, s.query())
}

func TestSlice_Each(t *testing.T) {
	src := Slice{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	var seen []string
	require.NoError(t, src.Each(context.Background(), func(r Record) error {
		seen = append(seen, r.ID)
		return nil
	}))
	assert.Equal(t, []string{"1", "2", "3"}, seen)

	stop := errors.New("stop")
	err := src.Each(context.Background(), func(r Record) error {
		if r.ID == "2" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
}

func TestSlice_EachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Slice{{ID: "1"}}.Each(ctx, func(Record) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
