package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows ledger queries. Zero values mean "no constraint".
type ListFilter struct {
	Type      EntryType
	PatientID *uuid.UUID
	VisitID   *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Entry, int, error)

	// SumByType totals entries of one type over an optional date range.
	SumByType(ctx context.Context, entryType EntryType, from, to *time.Time) (decimal.Decimal, error)
}
