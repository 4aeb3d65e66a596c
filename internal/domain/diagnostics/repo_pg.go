package diagnostics

import (
	"context"
	"fmt"

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

func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Lab orders --

type labRepoPG struct {
	pool *pgxpool.Pool
}

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository {
	return &labRepoPG{pool: pool}
}

const labCols = `id, patient_id, patient_name, visit_id, admission_id, order_id, service_item_id, test_name, status, result, result_by, result_at, created_at, updated_at`

func (r *labRepoPG) Create(ctx context.Context, o *LabOrder) error {
	o.ID = uuid.New()
	if o.Status == "" {
		o.Status = StatusOrdered
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO lab_order (id, patient_id, patient_name, visit_id, admission_id, order_id, service_item_id, test_name, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.PatientID, o.PatientName, o.VisitID, o.AdmissionID, o.OrderID, o.ServiceItemID, o.TestName, o.Status,
	)
	return err
}

func (r *labRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	return scanLabOrder(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+labCols+` FROM lab_order WHERE id = $1`, id))
}

func (r *labRepoPG) Update(ctx context.Context, o *LabOrder) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE lab_order SET status=$2, result=$3, result_by=$4, result_at=$5, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Status, o.Result, o.ResultBy, o.ResultAt,
	)
	return err
}

func (r *labRepoPG) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM lab_order WHERE order_id = $1`, orderID)
	return err
}

func (r *labRepoPG) List(ctx context.Context, status OrderStatus, limit, offset int) ([]*LabOrder, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_order `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM lab_order %s ORDER BY created_at LIMIT $%d OFFSET $%d`,
		labCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectLabOrders(rows, total)
}

func (r *labRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_order WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+labCols+` FROM lab_order WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectLabOrders(rows, total)
}

func scanLabOrder(row pgx.Row) (*LabOrder, error) {
	o := &LabOrder{}
	err := row.Scan(&o.ID, &o.PatientID, &o.PatientName, &o.VisitID, &o.AdmissionID,
		&o.OrderID, &o.ServiceItemID, &o.TestName, &o.Status, &o.Result,
		&o.ResultBy, &o.ResultAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func collectLabOrders(rows pgx.Rows, total int) ([]*LabOrder, int, error) {
	var orders []*LabOrder
	for rows.Next() {
		o := &LabOrder{}
		if err := rows.Scan(&o.ID, &o.PatientID, &o.PatientName, &o.VisitID, &o.AdmissionID,
			&o.OrderID, &o.ServiceItemID, &o.TestName, &o.Status, &o.Result,
			&o.ResultBy, &o.ResultAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// -- Radiology exams --

type radiologyRepoPG struct {
	pool *pgxpool.Pool
}

func NewRadiologyRepoPG(pool *pgxpool.Pool) RadiologyRepository {
	return &radiologyRepoPG{pool: pool}
}

const radCols = `id, patient_id, patient_name, visit_id, admission_id, order_id, service_item_id, exam_name, status, report, conclusion, result_by, result_at, created_at, updated_at`

func (r *radiologyRepoPG) Create(ctx context.Context, e *RadiologyExam) error {
	e.ID = uuid.New()
	if e.Status == "" {
		e.Status = StatusOrdered
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO radiology_exam (id, patient_id, patient_name, visit_id, admission_id, order_id, service_item_id, exam_name, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.PatientID, e.PatientName, e.VisitID, e.AdmissionID, e.OrderID, e.ServiceItemID, e.ExamName, e.Status,
	)
	return err
}

func (r *radiologyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RadiologyExam, error) {
	return scanRadiologyExam(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+radCols+` FROM radiology_exam WHERE id = $1`, id))
}

func (r *radiologyRepoPG) Update(ctx context.Context, e *RadiologyExam) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE radiology_exam SET status=$2, report=$3, conclusion=$4, result_by=$5, result_at=$6, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Status, e.Report, e.Conclusion, e.ResultBy, e.ResultAt,
	)
	return err
}

func (r *radiologyRepoPG) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM radiology_exam WHERE order_id = $1`, orderID)
	return err
}

func (r *radiologyRepoPG) List(ctx context.Context, status OrderStatus, limit, offset int) ([]*RadiologyExam, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM radiology_exam `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM radiology_exam %s ORDER BY created_at LIMIT $%d OFFSET $%d`,
		radCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRadiologyExams(rows, total)
}

func (r *radiologyRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*RadiologyExam, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM radiology_exam WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+radCols+` FROM radiology_exam WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRadiologyExams(rows, total)
}

func scanRadiologyExam(row pgx.Row) (*RadiologyExam, error) {
	e := &RadiologyExam{}
	err := row.Scan(&e.ID, &e.PatientID, &e.PatientName, &e.VisitID, &e.AdmissionID,
		&e.OrderID, &e.ServiceItemID, &e.ExamName, &e.Status, &e.Report, &e.Conclusion,
		&e.ResultBy, &e.ResultAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func collectRadiologyExams(rows pgx.Rows, total int) ([]*RadiologyExam, int, error) {
	var exams []*RadiologyExam
	for rows.Next() {
		e := &RadiologyExam{}
		if err := rows.Scan(&e.ID, &e.PatientID, &e.PatientName, &e.VisitID, &e.AdmissionID,
			&e.OrderID, &e.ServiceItemID, &e.ExamName, &e.Status, &e.Report, &e.Conclusion,
			&e.ResultBy, &e.ResultAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}
