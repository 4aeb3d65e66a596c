package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordEntry appends a manual cash book entry. Automated entries from
// order capture go through the same repository inside the visit
// transaction and never pass through here.
func (s *Service) RecordEntry(ctx context.Context, e *Entry) error {
	if !e.Type.Valid() {
		return fmt.Errorf("entry type must be %s or %s", EntryTypeIncome, EntryTypeExpense)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if e.RecordedBy == "" {
		return fmt.Errorf("recorded_by is required")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, filter ListFilter, limit, offset int) ([]*Entry, int, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, fmt.Errorf("invalid entry type: %s", filter.Type)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// Summary is the daily cash position the accounting screen shows.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

func (s *Service) Summarize(ctx context.Context, from, to *time.Time) (*Summary, error) {
	income, err := s.repo.SumByType(ctx, EntryTypeIncome, from, to)
	if err != nil {
		return nil, err
	}
	expense, err := s.repo.SumByType(ctx, EntryTypeExpense, from, to)
	if err != nil {
		return nil, err
	}
	return &Summary{Income: income, Expense: expense, Net: income.Sub(expense)}, nil
}
