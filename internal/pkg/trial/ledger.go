// Package trial tracks one-time free-trial consumption keyed by the pair of
// normalized email and client origin. The ledger is deliberately lenient
// towards storage faults: reads fail open and writes soft-fail, so a ledger
// outage never blocks a billing redirect or a grant response.
package trial

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/models"
)

// Ledger records and answers trial consumption for (email, origin) pairs.
type Ledger struct {
	repo Repository
}

// NewLedger creates a ledger from an injected repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// NewLedgerFromDB creates a ledger from a GORM DB handle.
func NewLedgerFromDB(db *gorm.DB) *Ledger {
	return NewLedger(NewRepository(db))
}

// HasUsed reports whether the pair has consumed its trial. On a lookup fault
// it fails open and reports false; a true trial can be double-granted while
// the store is down, which is accepted risk.
func (l *Ledger) HasUsed(email, origin string) bool {
	used, err := l.repo.Exists(models.NormalizeEmail(email), origin)
	if err != nil {
		log.Printf("trial ledger: lookup failed for origin %s, failing open: %v", origin, err)
		return false
	}
	return used
}

// MarkUsed upserts the consumption record for the pair. Idempotent: a repeat
// call refreshes owner and consumed-at on the existing row. Storage faults are
// logged and swallowed so the caller's response is never blocked by the write.
func (l *Ledger) MarkUsed(email, origin string, userID *uint) {
	record := &models.TrialRecord{
		Email:      models.NormalizeEmail(email),
		Origin:     origin,
		UserID:     userID,
		ConsumedAt: time.Now(),
	}
	if err := l.repo.Upsert(record); err != nil {
		log.Printf("trial ledger: failed to mark trial used for origin %s: %v", origin, err)
	}
}
