// Package storage persists the normalized holdings dataset. The Store
// interface is the orchestrator's only view of persistence; the gorm
// implementation below works against postgres in production and the
// in-memory sqlite driver in tests.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/prachitbhike/thirteen/internal/errors"
	"github.com/prachitbhike/thirteen/internal/models"
)

// Stats aggregates table counts for the reporting surface.
type Stats struct {
	TotalFundManagers int64      `json:"total_fund_managers"`
	TotalSecurities   int64      `json:"total_securities"`
	TotalFilings      int64      `json:"total_filings"`
	TotalHoldings     int64      `json:"total_holdings"`
	LastRunAt         *time.Time `json:"last_run_at,omitempty"`
}

// PercentUpdate carries one recomputed portfolio weight.
type PercentUpdate struct {
	HoldingID string
	Pct       float64
}

// Store is the persistence collaborator for the ingestion pipeline.
type Store interface {
	// UpsertFundManager resolves-or-creates a manager by CIK atomically.
	// The boolean reports whether a new row was created. On an existing
	// row the first-sighted name wins; the stored record is returned.
	UpsertFundManager(ctx context.Context, cik, name string) (*models.FundManager, bool, error)

	// UpsertSecurity resolves-or-creates a security by CUSIP atomically.
	UpsertSecurity(ctx context.Context, cusip, name string) (*models.Security, bool, error)

	// FindFiling returns the manager's filing for the given filing date,
	// or nil if none exists.
	FindFiling(ctx context.Context, fundManagerID string, filingDate time.Time) (*models.Filing, error)

	CreateFiling(ctx context.Context, filing *models.Filing) error
	CreateHoldings(ctx context.Context, holdings []*models.Holding) error

	// UpdateHoldingPercents backfills derived portfolio weights.
	UpdateHoldingPercents(ctx context.Context, updates []PercentUpdate) error

	// HoldingsSince returns all holdings with a period end on or after
	// the cutoff, the window position-change recomputation operates on.
	HoldingsSince(ctx context.Context, cutoff time.Time) ([]models.Holding, error)

	// UpsertPositionChange writes a derived change record keyed on
	// (fund manager, security, to-period); recomputation overwrites
	// rather than duplicating.
	UpsertPositionChange(ctx context.Context, change *models.PositionChange) error

	Stats(ctx context.Context) (*Stats, error)
}

// gormStore implements Store on top of gorm.
type gormStore struct {
	db *gorm.DB
}

// New creates a Store backed by the given gorm database.
func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) UpsertFundManager(ctx context.Context, cik, name string) (*models.FundManager, bool, error) {
	if strings.TrimSpace(cik) == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "CIK is required")
	}

	manager := &models.FundManager{CIK: cik, Name: name}
	// Insert-or-ignore keyed on the natural identifier, then read back.
	// Two concurrent first sightings both land on the same row.
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "cik"}}, DoNothing: true}).
		Create(manager)
	if res.Error != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrStorage, res.Error)
	}
	created := res.RowsAffected > 0
	if !created {
		manager = &models.FundManager{}
		if err := s.db.WithContext(ctx).First(manager, "cik = ?", cik).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrStorage, err)
		}
	}
	return manager, created, nil
}

func (s *gormStore) UpsertSecurity(ctx context.Context, cusip, name string) (*models.Security, bool, error) {
	if strings.TrimSpace(cusip) == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "CUSIP is required")
	}

	security := &models.Security{Cusip: cusip, Name: name}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "cusip"}}, DoNothing: true}).
		Create(security)
	if res.Error != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrStorage, res.Error)
	}
	created := res.RowsAffected > 0
	if !created {
		security = &models.Security{}
		if err := s.db.WithContext(ctx).First(security, "cusip = ?", cusip).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrStorage, err)
		}
	}
	return security, created, nil
}

func (s *gormStore) FindFiling(ctx context.Context, fundManagerID string, filingDate time.Time) (*models.Filing, error) {
	var filing models.Filing
	err := s.db.WithContext(ctx).
		Where("fund_manager_id = ? AND filing_date = ?", fundManagerID, filingDate).
		First(&filing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &filing, nil
}

func (s *gormStore) CreateFiling(ctx context.Context, filing *models.Filing) error {
	if err := s.db.WithContext(ctx).Create(filing).Error; err != nil {
		if isUniqueConstraintError(err) {
			return apperrors.Wrap(apperrors.ErrDuplicateFiling, err)
		}
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

func (s *gormStore) CreateHoldings(ctx context.Context, holdings []*models.Holding) error {
	if len(holdings) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(holdings).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

func (s *gormStore) UpdateHoldingPercents(ctx context.Context, updates []PercentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&models.Holding{}).
				Where("id = ?", u.HoldingID).
				Update("pct_of_portfolio", u.Pct).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

func (s *gormStore) HoldingsSince(ctx context.Context, cutoff time.Time) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Where("period_end >= ?", cutoff).
		Order("period_end ASC").
		Find(&holdings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return holdings, nil
}

func (s *gormStore) UpsertPositionChange(ctx context.Context, change *models.PositionChange) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "fund_manager_id"}, {Name: "security_id"}, {Name: "to_period"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"from_period", "shares_change", "value_change", "percent_change", "change_type", "updated_at",
			}),
		}).
		Create(change).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

func (s *gormStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	db := s.db.WithContext(ctx)

	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.FundManager{}, &stats.TotalFundManagers},
		{&models.Security{}, &stats.TotalSecurities},
		{&models.Filing{}, &stats.TotalFilings},
		{&models.Holding{}, &stats.TotalHoldings},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}
	}

	var last sql.NullTime
	if err := db.Model(&models.Filing{}).Select("MAX(processed_at)").Scan(&last).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if last.Valid {
		stats.LastRunAt = &last.Time
	}
	return stats, nil
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
