// Package openinghours serves the bakery's weekly schedule and its exceptions,
// and derives the days the shop is open.
package openinghours

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bagerileve/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSetID names the schedule shown on the site.
const DefaultSetID = "default"

var ErrNotFound = errors.New("opening hours not found")

type Store interface {
	Get(ctx context.Context, setID string) (*domain.OpeningHours, error)
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("opening_hours")}
}

func (m *MongoStore) Get(ctx context.Context, setID string) (*domain.OpeningHours, error) {
	var hours domain.OpeningHours
	err := m.collection.FindOne(ctx, bson.M{"set_id": setID}).Decode(&hours)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("set %q: %w", setID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get opening hours: %w", err)
	}
	return &hours, nil
}

func (m *MongoStore) Upsert(ctx context.Context, hours *domain.OpeningHours) error {
	hours.UpdatedAt = time.Now()

	_, err := m.collection.UpdateOne(ctx,
		bson.M{"set_id": hours.SetID},
		bson.M{"$set": hours},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert opening hours: %w", err)
	}
	return nil
}

// Seed stores hours unless a schedule with the same set id already exists.
func (m *MongoStore) Seed(ctx context.Context, hours *domain.OpeningHours) error {
	_, err := m.Get(ctx, hours.SetID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return m.Upsert(ctx, hours)
}

func (m *MongoStore) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "set_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// DefaultHours is the schedule seeded into an empty store: open Tuesday to
// Saturday, closed Sunday and Monday.
func DefaultHours() *domain.OpeningHours {
	return &domain.OpeningHours{
		SetID: DefaultSetID,
		Title: "Öppettider",
		Days: domain.Week{
			Mon: domain.WeekdayHours{Day: 1, Closed: true},
			Tue: domain.WeekdayHours{Day: 2, Time: "08-17"},
			Wed: domain.WeekdayHours{Day: 3, Time: "08-17"},
			Thu: domain.WeekdayHours{Day: 4, Time: "08-17"},
			Fri: domain.WeekdayHours{Day: 5, Time: "08-17"},
			Sat: domain.WeekdayHours{Day: 6, Time: "09-14"},
			Sun: domain.WeekdayHours{Day: 0, Closed: true},
		},
	}
}
