package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/winnow/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "comparison_reports"

// ErrReportNotFound is returned when no report has the requested ID.
var ErrReportNotFound = errors.New("report not found")

type ReportsRepository struct {
	mongoRepo *MongoRepository
}

func NewReportsRepository(mongoRepo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{
		mongoRepo: mongoRepo,
	}
}

// SaveReport writes report under its ID, replacing any earlier write of the
// same ID.
func (r *ReportsRepository) SaveReport(ctx context.Context, report *models.ComparisonReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	filter, opts := upsertByID(report.ID)
	err := r.mongoRepo.ReplaceOne(ctx, reportsCollection, filter, report, opts)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

func upsertByID(id string) (bson.M, *options.ReplaceOptions) {
	return bson.M{"_id": id}, options.Replace().SetUpsert(true)
}

func (r *ReportsRepository) GetReportByID(ctx context.Context, id string) (*models.ComparisonReport, error) {
	filter := bson.M{"_id": id}

	var report models.ComparisonReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

func (r *ReportsRepository) ListReportsByMainName(ctx context.Context, mainName string, limit int64) ([]*models.ComparisonReport, error) {
	filter := bson.M{"mainName": mainName}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.mongoRepo.FindMany(ctx, reportsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*models.ComparisonReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}

	return reports, nil
}
