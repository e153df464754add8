package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"smart-bin.backend/internal/domain/entities"
	"smart-bin.backend/internal/infrastructure/models"
)

// LedgerRepository implements append-only ledger storage
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append writes an immutable entry
func (r *LedgerRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	createdAt := time.Now()
	if entry.Timestamp != 0 {
		createdAt = time.UnixMilli(entry.Timestamp)
	} else {
		entry.Timestamp = createdAt.UnixMilli()
	}

	m := &models.LedgerEntry{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Points:    entry.Points,
		Source:    entry.Source,
		Type:      string(entry.Type),
		CreatedAt: createdAt,
	}
	if entry.VendorID.Valid {
		vendorID, err := uuid.Parse(entry.VendorID.String)
		if err != nil {
			return err
		}
		m.VendorID = &vendorID
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// ListByUser returns a user's entries, newest first
func (r *LedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.LedgerEntry, error) {
	var rows []models.LedgerEntry
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntities(rows), nil
}

// ListAll returns every entry, newest first
func (r *LedgerRepository) ListAll(ctx context.Context) ([]*entities.LedgerEntry, error) {
	var rows []models.LedgerEntry
	if err := GetDB(ctx, r.db).WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntities(rows), nil
}

// SumForUser recomputes a balance from the ledger
func (r *LedgerRepository) SumForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum *int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.LedgerEntry{}).
		Select("SUM(points)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func toLedgerEntities(rows []models.LedgerEntry) []*entities.LedgerEntry {
	out := make([]*entities.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		e := &entities.LedgerEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			Points:    row.Points,
			Source:    row.Source,
			Timestamp: row.CreatedAt.UnixMilli(),
			Type:      entities.LedgerEntryType(row.Type),
		}
		if row.VendorID != nil {
			e.VendorID = null.StringFrom(row.VendorID.String())
		}
		out = append(out, e)
	}
	return out
}
