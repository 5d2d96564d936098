package models

import "time"

// TrialRecord marks a consumed free trial for an (email, origin) pair. The
// unique index on the pair is the sole guard against double grants; writers
// race on first use and the upsert absorbs the losing insert.
type TrialRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"type:varchar(200);not null;index:ux_trial_records_email_origin,unique,priority:1" json:"email"`
	Origin     string    `gorm:"type:varchar(64);not null;index:ux_trial_records_email_origin,unique,priority:2" json:"origin"`
	UserID     *uint     `gorm:"index;default:null" json:"user_id,omitempty"`
	ConsumedAt time.Time `gorm:"not null" json:"consumed_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
