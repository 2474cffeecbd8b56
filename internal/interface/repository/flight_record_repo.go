package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFlightRecordRepository implements FlightRecordRepository
type MongoFlightRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoFlightRecordRepository creates a new flight record repository
func NewMongoFlightRecordRepository(ctx context.Context, db *mongo.Database) (*MongoFlightRecordRepository, error) {
	collection := db.Collection("flights")

	// Flight numbers repeat across days, so the number index is not unique
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "flightNumber", Value: 1}, {Key: "scheduledTime", Value: 1}}},
		{Keys: bson.M{"scheduledTime": 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create flight indexes: %w", err)
	}

	return &MongoFlightRecordRepository{
		collection: collection,
	}, nil
}

var _ repository.FlightRecordRepository = (*MongoFlightRecordRepository)(nil)

// FindAll returns every stored flight
func (r *MongoFlightRecordRepository) FindAll(ctx context.Context) ([]*entity.FlightRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "scheduledTime", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*entity.FlightRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}
	return records, nil
}

// FindByID finds a flight by its identifier
func (r *MongoFlightRecordRepository) FindByID(ctx context.Context, id string) (*entity.FlightRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByFlightNumber returns the earliest scheduled flight carrying the number
func (r *MongoFlightRecordRepository) FindByFlightNumber(ctx context.Context, flightNumber string) (*entity.FlightRecord, error) {
	return r.findOne(ctx, bson.M{"flightNumber": flightNumber},
		options.FindOne().SetSort(bson.D{{Key: "scheduledTime", Value: 1}}))
}

// Save creates or replaces a flight record
func (r *MongoFlightRecordRepository) Save(ctx context.Context, record *entity.FlightRecord) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save flight %s: %w", record.FlightNumber, err)
	}
	return nil
}

// Delete removes a flight record
func (r *MongoFlightRecordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete flight %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoFlightRecordRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*entity.FlightRecord, error) {
	var record entity.FlightRecord
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
