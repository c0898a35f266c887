// Package storage provides MongoDB persistence for SectorWire reports.
package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the report collections.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	reports  *mongo.Collection
	weeklies *mongo.Collection
}

// NewStore creates a new storage connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	store := &Store{
		client:   client,
		db:       db,
		reports:  db.Collection("sector_reports"),
		weeklies: db.Collection("weekly_summaries"),
	}

	if err := store.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create some indexes")
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) createIndexes(ctx context.Context) error {
	reportIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sector_id", Value: 1}, {Key: "generated_date", Value: -1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := s.reports.Indexes().CreateMany(ctx, reportIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create report indexes")
	}

	weeklyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "generated_date", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := s.weeklies.Indexes().CreateMany(ctx, weeklyIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create weekly indexes")
	}

	return nil
}

// ============================================================================
// SECTOR REPORT OPERATIONS
// ============================================================================

// UpsertSectorReport inserts or replaces a report for a sector and run date.
// A re-run of the same sector on the same day overwrites the earlier report.
func (s *Store) UpsertSectorReport(ctx context.Context, report *models.SectorReport) error {
	report.CreatedAt = time.Now()

	filter := bson.M{"sector_id": report.SectorID, "generated_date": report.GeneratedDate}
	update := bson.M{"$set": report}
	opts := options.Update().SetUpsert(true)

	_, err := s.reports.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetLatestSectorReport returns the most recent report for a sector.
func (s *Store) GetLatestSectorReport(ctx context.Context, sectorID string) (*models.SectorReport, error) {
	var report models.SectorReport
	opts := options.FindOne().SetSort(bson.D{{Key: "generated_date", Value: -1}})
	err := s.reports.FindOne(ctx, bson.M{"sector_id": sectorID}, opts).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetSectorReports returns the latest reports across sectors.
func (s *Store) GetSectorReports(ctx context.Context, limit int) ([]models.SectorReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.reports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.SectorReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ============================================================================
// WEEKLY SUMMARY OPERATIONS
// ============================================================================

// SaveWeeklySummary saves a weekly report.
func (s *Store) SaveWeeklySummary(ctx context.Context, summary *models.WeeklySummary) error {
	summary.CreatedAt = time.Now()
	_, err := s.weeklies.InsertOne(ctx, summary)
	return err
}

// GetLatestWeeklySummary returns the most recent weekly report.
func (s *Store) GetLatestWeeklySummary(ctx context.Context) (*models.WeeklySummary, error) {
	var summary models.WeeklySummary
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.weeklies.FindOne(ctx, bson.M{}, opts).Decode(&summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ============================================================================
// STATS OPERATIONS
// ============================================================================

// Stats holds general statistics.
type Stats struct {
	TotalReports  int64 `json:"total_reports"`
	TotalWeeklies int64 `json:"total_weeklies"`
}

// GetStats returns general statistics.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var err error
	stats.TotalReports, err = s.reports.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	stats.TotalWeeklies, err = s.weeklies.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
