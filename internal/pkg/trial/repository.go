package trial

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shot2code/shot2code/app/models"
)

// Repository provides DB operations used by the trial ledger.
type Repository interface {
	Exists(email, origin string) (bool, error)
	Upsert(record *models.TrialRecord) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a trial repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Exists(email, origin string) (bool, error) {
	var record models.TrialRecord
	err := r.db.Where("email = ? AND origin = ?", email, origin).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Upsert inserts the record or, when the (email, origin) key already exists,
// refreshes owner and consumed-at. Concurrent first-time inserts race on the
// unique index; the conflict clause absorbs the loser, so both writers succeed
// and exactly one row remains.
func (r *gormRepository) Upsert(record *models.TrialRecord) error {
	if record.ConsumedAt.IsZero() {
		record.ConsumedAt = time.Now()
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "email"},
			{Name: "origin"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"consumed_at",
			"updated_at",
		}),
	}).Create(record).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("email = ? AND origin = ?", record.Email, record.Origin).
		First(record).Error
}
