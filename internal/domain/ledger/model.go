package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType keeps the wire values the billing office already uses:
// "Thu" for money coming in, "Chi" for money going out.
type EntryType string

const (
	EntryTypeIncome  EntryType = "Thu"
	EntryTypeExpense EntryType = "Chi"
)

func (t EntryType) Valid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// Entry is one row in the cash book. Entries are append-only; corrections
// are made by recording an offsetting entry, never by editing history.
type Entry struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Type        EntryType       `db:"entry_type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	PatientID   *uuid.UUID      `db:"patient_id" json:"patient_id,omitempty"`
	VisitID     *uuid.UUID      `db:"visit_id" json:"visit_id,omitempty"`
	AdmissionID *uuid.UUID      `db:"admission_id" json:"admission_id,omitempty"`
	OrderID     *uuid.UUID      `db:"order_id" json:"order_id,omitempty"`
	RecordedBy  string          `db:"recorded_by" json:"recorded_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
