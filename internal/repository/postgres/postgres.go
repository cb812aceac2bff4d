package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/smartcity/evsite/internal/domain"
)

// Pool is the subset of pgxpool.Pool used by the repository.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresRepository implements domain.PredictionRepository
type PostgresRepository struct {
	pool Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// RecordPrediction persists an analysis and its input to PostgreSQL
func (r *PostgresRepository) RecordPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	query := `
		INSERT INTO prediction_logs (
			analysis_id, location_name, location, annual_roi, payback_period,
			estimated_annual_revenue, cluster_id, viability_score,
			investment_grade, risk_level, recommendations, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	location, err := json.Marshal(rec.Location)
	if err != nil {
		return eris.Wrap(err, "postgres: failed to marshal location")
	}
	recommendations, err := json.Marshal(rec.Result.Recommendations)
	if err != nil {
		return eris.Wrap(err, "postgres: failed to marshal recommendations")
	}

	roi := rec.Result.Predictions.ROI
	_, err = r.pool.Exec(ctx, query,
		rec.AnalysisID, rec.LocationName, location, roi.AnnualROI, roi.PaybackPeriod,
		roi.EstimatedAnnualRevenue, rec.Result.Predictions.LocationType.ClusterID, rec.Result.ViabilityScore,
		rec.Result.InvestmentGrade, rec.Result.RiskLevel, recommendations, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: failed to save prediction log")
	}

	return nil
}

// RecentPredictions retrieves the newest prediction logs from PostgreSQL
func (r *PostgresRepository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLogEntry, error) {
	query := `
		SELECT analysis_id, location_name, annual_roi, cluster_id,
			   viability_score, investment_grade, risk_level, created_at
		FROM prediction_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: failed to query prediction logs")
	}
	defer rows.Close()

	var results []domain.PredictionLogEntry
	for rows.Next() {
		var e domain.PredictionLogEntry
		err := rows.Scan(
			&e.AnalysisID, &e.LocationName, &e.AnnualROI, &e.ClusterID,
			&e.ViabilityScore, &e.InvestmentGrade, &e.RiskLevel, &e.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: failed to scan prediction log row")
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: failed to iterate prediction logs")
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return eris.Wrap(err, "postgres: health check failed")
	}
	return nil
}
