package catalog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSource reads inventory from a MongoDB collection keyed by SKU.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
}

const mongoCloseTimeout = 5 * time.Second

type mongoItem struct {
	SKU         string  `bson:"_id"`
	Name        string  `bson:"name"`
	Description string  `bson:"description"`
	UnitPrice   float64 `bson:"unit_price"`
}

// NewMongoSource connects to MongoDB and returns a catalog source.
func NewMongoSource(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoSource{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Item returns the inventory document for a SKU. A missing document is not
// an error.
func (ms *MongoSource) Item(ctx context.Context, sku string) (Item, bool, error) {
	if ms == nil || ms.collection == nil {
		return Item{}, false, nil
	}
	var doc mongoItem
	err := ms.collection.FindOne(ctx, bson.M{"_id": sku}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, err
	}
	return itemFromDoc(doc), true, nil
}

// Items returns the full inventory ordered by SKU.
func (ms *MongoSource) Items(ctx context.Context) ([]Item, error) {
	if ms == nil || ms.collection == nil {
		return nil, nil
	}
	cursor, err := ms.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoItem
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, itemFromDoc(doc))
	}
	return items, nil
}

// Close disconnects the underlying client.
func (ms *MongoSource) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	closeCtx, cancel := context.WithTimeout(ctx, mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(closeCtx)
}

func itemFromDoc(doc mongoItem) Item {
	return Item{
		ID:          doc.SKU,
		Name:        doc.Name,
		Description: doc.Description,
		UnitPrice:   doc.UnitPrice,
	}
}

var _ Source = (*MongoSource)(nil)
