package trial

import (
	"errors"
	"testing"

	"github.com/shot2code/shot2code/app/models"
)

type fakeRepository struct {
	existsResult bool
	existsErr    error
	upsertErr    error

	existsCalls  [][2]string
	upsertedRows []*models.TrialRecord
}

func (f *fakeRepository) Exists(email, origin string) (bool, error) {
	f.existsCalls = append(f.existsCalls, [2]string{email, origin})
	return f.existsResult, f.existsErr
}

func (f *fakeRepository) Upsert(record *models.TrialRecord) error {
	f.upsertedRows = append(f.upsertedRows, record)
	return f.upsertErr
}

func TestHasUsedNormalizesEmail(t *testing.T) {
	repo := &fakeRepository{existsResult: true}
	ledger := NewLedger(repo)

	if !ledger.HasUsed("  Alice@Example.COM ", "1.2.3.4") {
		t.Fatalf("expected HasUsed to report true")
	}
	if len(repo.existsCalls) != 1 {
		t.Fatalf("expected one lookup, got %d", len(repo.existsCalls))
	}
	if repo.existsCalls[0][0] != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", repo.existsCalls[0][0])
	}
	if repo.existsCalls[0][1] != "1.2.3.4" {
		t.Fatalf("expected origin to pass through, got %q", repo.existsCalls[0][1])
	}
}

func TestHasUsedFailsOpenOnLookupError(t *testing.T) {
	repo := &fakeRepository{existsResult: true, existsErr: errors.New("connection refused")}
	ledger := NewLedger(repo)

	if ledger.HasUsed("alice@example.com", "1.2.3.4") {
		t.Fatalf("expected lookup fault to fail open (report unused)")
	}
}

func TestMarkUsedRecordsNormalizedPair(t *testing.T) {
	repo := &fakeRepository{}
	ledger := NewLedger(repo)

	userID := uint(42)
	ledger.MarkUsed("Bob@Example.com", "5.6.7.8", &userID)

	if len(repo.upsertedRows) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upsertedRows))
	}
	row := repo.upsertedRows[0]
	if row.Email != "bob@example.com" {
		t.Fatalf("expected normalized email, got %q", row.Email)
	}
	if row.Origin != "5.6.7.8" {
		t.Fatalf("unexpected origin %q", row.Origin)
	}
	if row.UserID == nil || *row.UserID != 42 {
		t.Fatalf("expected user id 42, got %v", row.UserID)
	}
	if row.ConsumedAt.IsZero() {
		t.Fatalf("expected consumed-at to be set")
	}
}

func TestMarkUsedSwallowsWriteError(t *testing.T) {
	repo := &fakeRepository{upsertErr: errors.New("deadlock")}
	ledger := NewLedger(repo)

	// Must not panic or propagate; the caller's response goes out regardless.
	ledger.MarkUsed("bob@example.com", "5.6.7.8", nil)

	if len(repo.upsertedRows) != 1 {
		t.Fatalf("expected the write to have been attempted")
	}
}
