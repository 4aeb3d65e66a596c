package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/visitflow/visitflow/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = `id, entry_type, amount, description, patient_id, visit_id, admission_id, order_id, recorded_by, created_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ledger_entry (id, entry_type, amount, description, patient_id, visit_id, admission_id, order_id, recorded_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.Type, e.Amount, e.Description, e.PatientID, e.VisitID, e.AdmissionID, e.OrderID, e.RecordedBy, e.CreatedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e := &Entry{}
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+entryCols+` FROM ledger_entry WHERE id = $1`, id).
		Scan(&e.ID, &e.Type, &e.Amount, &e.Description, &e.PatientID, &e.VisitID,
			&e.AdmissionID, &e.OrderID, &e.RecordedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Entry, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1

	if filter.Type != "" {
		where += fmt.Sprintf(" AND entry_type = $%d", argN)
		args = append(args, filter.Type)
		argN++
	}
	if filter.PatientID != nil {
		where += fmt.Sprintf(" AND patient_id = $%d", argN)
		args = append(args, *filter.PatientID)
		argN++
	}
	if filter.VisitID != nil {
		where += fmt.Sprintf(" AND visit_id = $%d", argN)
		args = append(args, *filter.VisitID)
		argN++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at < $%d", argN)
		args = append(args, *filter.To)
		argN++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_entry `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM ledger_entry %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		entryCols, where, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Type, &e.Amount, &e.Description, &e.PatientID,
			&e.VisitID, &e.AdmissionID, &e.OrderID, &e.RecordedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repoPG) SumByType(ctx context.Context, entryType EntryType, from, to *time.Time) (decimal.Decimal, error) {
	where := "WHERE entry_type = $1"
	args := []interface{}{entryType}
	argN := 2
	if from != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *from)
		argN++
	}
	if to != nil {
		where += fmt.Sprintf(" AND created_at < $%d", argN)
		args = append(args, *to)
	}

	var sum decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entry `+where, args...).Scan(&sum)
	return sum, err
}
