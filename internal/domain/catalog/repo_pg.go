package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitflow/visitflow/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type serviceItemRepoPG struct {
	pool *pgxpool.Pool
}

func NewServiceItemRepoPG(pool *pgxpool.Pool) ServiceItemRepository {
	return &serviceItemRepoPG{pool: pool}
}

func (r *serviceItemRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const svcCols = `id, code, name, category, kind, price, active, created_at, updated_at`

func (r *serviceItemRepoPG) Create(ctx context.Context, item *ServiceItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_item (id, code, name, category, kind, price, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.Code, item.Name, item.Category, item.Kind, item.Price, item.Active,
	)
	return err
}

func (r *serviceItemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceItem, error) {
	return scanServiceItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+svcCols+` FROM service_item WHERE id = $1`, id))
}

func (r *serviceItemRepoPG) Update(ctx context.Context, item *ServiceItem) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE service_item SET
			code=$2, name=$3, category=$4, kind=$5, price=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		item.ID, item.Code, item.Name, item.Category, item.Kind, item.Price, item.Active,
	)
	return err
}

func (r *serviceItemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM service_item WHERE id = $1`, id)
	return err
}

func (r *serviceItemRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM service_item`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+svcCols+` FROM service_item ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectServiceItems(rows, total)
}

func (r *serviceItemRepoPG) ListByKind(ctx context.Context, kind Kind, limit, offset int) ([]*ServiceItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM service_item WHERE kind = $1`, kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+svcCols+` FROM service_item WHERE kind = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectServiceItems(rows, total)
}

func scanServiceItem(row pgx.Row) (*ServiceItem, error) {
	item := &ServiceItem{}
	err := row.Scan(&item.ID, &item.Code, &item.Name, &item.Category, &item.Kind,
		&item.Price, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func collectServiceItems(rows pgx.Rows, total int) ([]*ServiceItem, int, error) {
	var items []*ServiceItem
	for rows.Next() {
		item := &ServiceItem{}
		if err := rows.Scan(&item.ID, &item.Code, &item.Name, &item.Category, &item.Kind,
			&item.Price, &item.Active, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

type medicationRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medCols = `id, code, name, unit, cost, stock, expiry_date, created_at, updated_at`

func (r *medicationRepoPG) Create(ctx context.Context, med *Medication) error {
	med.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medication (id, code, name, unit, cost, stock, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		med.ID, med.Code, med.Name, med.Unit, med.Cost, med.Stock, med.ExpiryDate,
	)
	return err
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return scanMedication(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medication WHERE id = $1`, id))
}

func (r *medicationRepoPG) Update(ctx context.Context, med *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medication SET
			code=$2, name=$3, unit=$4, cost=$5, stock=$6, expiry_date=$7, updated_at=NOW()
		WHERE id = $1`,
		med.ID, med.Code, med.Name, med.Unit, med.Cost, med.Stock, med.ExpiryDate,
	)
	return err
}

func (r *medicationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	return err
}

func (r *medicationRepoPG) List(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medication`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medCols+` FROM medication ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var meds []*Medication
	for rows.Next() {
		med := &Medication{}
		if err := rows.Scan(&med.ID, &med.Code, &med.Name, &med.Unit, &med.Cost,
			&med.Stock, &med.ExpiryDate, &med.CreatedAt, &med.UpdatedAt); err != nil {
			return nil, 0, err
		}
		meds = append(meds, med)
	}
	return meds, total, rows.Err()
}

func (r *medicationRepoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE medication SET stock = stock + $2, updated_at=NOW() WHERE id = $1`, id, delta)
	return err
}

func scanMedication(row pgx.Row) (*Medication, error) {
	med := &Medication{}
	err := row.Scan(&med.ID, &med.Code, &med.Name, &med.Unit, &med.Cost,
		&med.Stock, &med.ExpiryDate, &med.CreatedAt, &med.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return med, nil
}
