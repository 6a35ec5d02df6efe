package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wimwenigerkind/LetsMeet/internal/normalize"
)

// MongoSource reads the legacy document store. One document per user, keyed
// by email in _id, with nested likes, messages and friends arrays. This is
// the event-history source and must run last: its relationships reference
// users the other sources created.
type MongoSource struct {
	url        string
	database   string
	collection string
}

func NewMongoSource(url, database, collection string) *MongoSource {
	return &MongoSource{url: url, database: database, collection: collection}
}

func (s *MongoSource) Name() string { return "mongo" }

func (s *MongoSource) Records(ctx context.Context) ([]Record, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	coll := client.Database(s.database).Collection(s.collection)
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", s.database, s.collection, err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", s.database, s.collection, err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, decodeMongoUser(doc))
	}
	return records, nil
}

// decodeMongoUser normalizes one legacy document. Pure; tested against
// bson.M literals without a running server.
func decodeMongoUser(doc bson.M) Record {
	rec := Record{
		Email:       normalize.Email(asString(doc["_id"])),
		PhoneNumber: strings.TrimSpace(asString(doc["phone"])),
		CreatedAt:   asTime(doc["createdAt"]),
	}
	rec.FirstName, rec.LastName = normalize.SplitName(asString(doc["name"]))

	for _, v := range asSlice(doc["likes"]) {
		like, ok := v.(bson.M)
		if !ok {
			continue
		}
		rec.Likes = append(rec.Likes, LikeRef{
			LikedEmail: normalize.Email(asString(like["liked_email"])),
			Status:     strings.TrimSpace(asString(like["status"])),
			Timestamp:  asTime(like["timestamp"]),
		})
	}

	for _, v := range asSlice(doc["messages"]) {
		msg, ok := v.(bson.M)
		if !ok {
			continue
		}
		rec.Messages = append(rec.Messages, MessageRef{
			ConversationID: asString(msg["conversation_id"]),
			ReceiverEmail:  normalize.Email(asString(msg["receiver_email"])),
			Text:           asString(msg["message"]),
			SentAt:         asTime(msg["timestamp"]),
		})
	}

	for _, v := range asSlice(doc["friends"]) {
		if email := normalize.Email(asString(v)); email != "" {
			rec.Friends = append(rec.Friends, email)
		}
	}

	return rec
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asSlice(v interface{}) []interface{} {
	switch vv := v.(type) {
	case primitive.A:
		return vv
	case []interface{}:
		return vv
	}
	return nil
}

// asTime handles the timestamp shapes found in the dump: BSON datetimes,
// native times from the decoder, and free-form strings.
func asTime(v interface{}) *time.Time {
	switch vv := v.(type) {
	case primitive.DateTime:
		t := vv.Time().UTC()
		return &t
	case time.Time:
		t := vv.UTC()
		return &t
	case string:
		return normalize.ParseDate(vv)
	}
	return nil
}
