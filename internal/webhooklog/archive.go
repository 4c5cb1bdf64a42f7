// Package webhooklog archives raw provider webhook deliveries in MongoDB.
package webhooklog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const collectionDeliveries = "bland_webhook_deliveries"

// Archive stores one document per delivery.
type Archive struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// Open connects to MongoDB and returns an archive over the deliveries
// collection of database. The returned func disconnects the client.
func Open(ctx context.Context, uri, database string) (*Archive, func(context.Context) error, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewArchive(client.Database(database).Collection(collectionDeliveries)), client.Disconnect, nil
}

func NewArchive(coll *mongo.Collection) *Archive {
	return &Archive{coll: coll, timeout: 3 * time.Second}
}

// Record counts earlier deliveries for the provider call, then stores this
// one. The count and the insert are not atomic; two concurrent first
// deliveries may both report zero.
func (a *Archive) Record(ctx context.Context, providerCallID string, payload []byte, at time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prior, err := a.coll.CountDocuments(ctx, bson.M{"provider_call_id": providerCallID})
	if err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	if _, err := a.coll.InsertOne(ctx, deliveryDocument(providerCallID, payload, at)); err != nil {
		return int(prior), fmt.Errorf("insert delivery: %w", err)
	}
	return int(prior), nil
}

// deliveryDocument keeps the payload as a document when it is a JSON object
// and as a string otherwise.
func deliveryDocument(providerCallID string, payload []byte, at time.Time) bson.M {
	doc := bson.M{
		"provider_call_id": providerCallID,
		"received_at":      at.UTC(),
	}
	var body bson.M
	if err := bson.UnmarshalExtJSON(payload, false, &body); err == nil {
		doc["payload"] = body
	} else {
		doc["payload_raw"] = string(payload)
	}
	return doc
}
