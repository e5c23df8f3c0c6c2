package repository

import (
	"context"
	"time"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRunReportRepository implements RunReportRepository
type MongoRunReportRepository struct {
	collection *mongo.Collection
}

// NewMongoRunReportRepository creates a new run report repository
func NewMongoRunReportRepository(db *mongo.Database) repository.RunReportRepository {
	collection := db.Collection("run_reports")

	// Index for latest-per-tier lookups
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "tier", Value: 1}, {Key: "startedAt", Value: -1}},
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoRunReportRepository{
		collection: collection,
	}
}

// Save persists one batch run report
func (r *MongoRunReportRepository) Save(ctx context.Context, report *entity.RunReport) error {
	if report.ID == "" {
		report.ID = primitive.NewObjectID().Hex()
	}
	report.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

// Latest returns the most recent run report for a tier; tier "" means the
// most recent run of any tier.
func (r *MongoRunReportRepository) Latest(ctx context.Context, tier string) (*entity.RunReport, error) {
	filter := bson.M{}
	if tier != "" {
		filter["tier"] = tier
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	var report entity.RunReport
	err := r.collection.FindOne(ctx, filter, opts).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Recent returns the last N run reports, newest first
func (r *MongoRunReportRepository) Recent(ctx context.Context, limit int64) ([]entity.RunReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []entity.RunReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
