package visit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// -- Visits --

const visitCols = `id, patient_id, doctor_id, status, symptoms, diagnosis, is_diagnosis_signed, clinical_note, is_note_signed, visit_date, created_at, updated_at`

func (r *repoPG) CreateVisit(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (id, patient_id, doctor_id, status, symptoms, visit_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		v.ID, v.PatientID, v.DoctorID, v.Status, v.Symptoms, v.VisitDate,
	)
	return err
}

func (r *repoPG) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v := &Visit{}
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE id = $1`, id).
		Scan(&v.ID, &v.PatientID, &v.DoctorID, &v.Status, &v.Symptoms, &v.Diagnosis,
			&v.IsDiagnosisSigned, &v.ClinicalNote, &v.IsNoteSigned, &v.VisitDate,
			&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if v.ClinicalOrders, err = r.loadOrders(ctx, "visit_id", id); err != nil {
		return nil, err
	}
	if v.Prescription, err = r.loadPrescription(ctx, "visit_id", id); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repoPG) UpdateVisit(ctx context.Context, v *Visit) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit SET
			doctor_id=$2, status=$3, symptoms=$4, diagnosis=$5, is_diagnosis_signed=$6,
			clinical_note=$7, is_note_signed=$8, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.DoctorID, v.Status, v.Symptoms, v.Diagnosis, v.IsDiagnosisSigned,
		v.ClinicalNote, v.IsNoteSigned,
	)
	return err
}

func (r *repoPG) ListVisits(ctx context.Context, status VisitStatus, limit, offset int) ([]*Visit, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM visit `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM visit %s ORDER BY visit_date DESC LIMIT $%d OFFSET $%d`,
		visitCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v := &Visit{}
		if err := rows.Scan(&v.ID, &v.PatientID, &v.DoctorID, &v.Status, &v.Symptoms,
			&v.Diagnosis, &v.IsDiagnosisSigned, &v.ClinicalNote, &v.IsNoteSigned,
			&v.VisitDate, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}

func (r *repoPG) ReplaceVisitOrders(ctx context.Context, visitID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error {
	return r.replaceLines(ctx, "visit_id", visitID, orders, prescription)
}

// -- Admissions --

const admissionCols = `id, patient_id, doctor_id, ward, bed, status, diagnosis, is_diagnosis_signed, discharge_summary, is_discharge_summary_signed, admitted_at, discharge_date, created_at, updated_at`

func (r *repoPG) CreateAdmission(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admission (id, patient_id, doctor_id, ward, bed, status, diagnosis, admitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DoctorID, a.Ward, a.Bed, a.Status, a.Diagnosis, a.AdmittedAt,
	)
	return err
}

func (r *repoPG) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	a := &Admission{}
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+` FROM admission WHERE id = $1`, id).
		Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Ward, &a.Bed, &a.Status, &a.Diagnosis,
			&a.IsDiagnosisSigned, &a.DischargeSummary, &a.IsDischargeSummarySigned,
			&a.AdmittedAt, &a.DischargeDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if a.ClinicalOrders, err = r.loadOrders(ctx, "admission_id", id); err != nil {
		return nil, err
	}
	if a.Prescription, err = r.loadPrescription(ctx, "admission_id", id); err != nil {
		return nil, err
	}
	if a.NursingTasks, err = r.loadNursingTasks(ctx, id); err != nil {
		return nil, err
	}
	vitals, err := r.ListVitalSignRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	a.VitalSignRecords = make([]VitalSignRecord, len(vitals))
	for i, v := range vitals {
		a.VitalSignRecords[i] = *v
	}
	return a, nil
}

func (r *repoPG) UpdateAdmission(ctx context.Context, a *Admission) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE admission SET
			doctor_id=$2, ward=$3, bed=$4, status=$5, diagnosis=$6, is_diagnosis_signed=$7,
			discharge_summary=$8, is_discharge_summary_signed=$9, discharge_date=$10, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.DoctorID, a.Ward, a.Bed, a.Status, a.Diagnosis, a.IsDiagnosisSigned,
		a.DischargeSummary, a.IsDischargeSummarySigned, a.DischargeDate,
	)
	return err
}

func (r *repoPG) ListAdmissions(ctx context.Context, status AdmissionStatus, limit, offset int) ([]*Admission, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admission `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM admission %s ORDER BY admitted_at DESC LIMIT $%d OFFSET $%d`,
		admissionCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admissions []*Admission
	for rows.Next() {
		a := &Admission{}
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Ward, &a.Bed, &a.Status,
			&a.Diagnosis, &a.IsDiagnosisSigned, &a.DischargeSummary, &a.IsDischargeSummarySigned,
			&a.AdmittedAt, &a.DischargeDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		admissions = append(admissions, a)
	}
	return admissions, total, rows.Err()
}

func (r *repoPG) ReplaceAdmissionOrders(ctx context.Context, admissionID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error {
	return r.replaceLines(ctx, "admission_id", admissionID, orders, prescription)
}

// -- Line items --

// replaceLines swaps the full line set of one record. Callers run it
// inside the same transaction as the fan-out inserts.
func (r *repoPG) replaceLines(ctx context.Context, ownerCol string, ownerID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error {
	q := r.conn(ctx)

	if _, err := q.Exec(ctx,
		fmt.Sprintf(`DELETE FROM clinical_order WHERE %s = $1`, ownerCol), ownerID); err != nil {
		return err
	}
	for i, o := range orders {
		if _, err := q.Exec(ctx, fmt.Sprintf(`
			INSERT INTO clinical_order (id, %s, service_item_id, service_name, kind, price, notes, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, ownerCol),
			o.ID, ownerID, o.ServiceID, o.ServiceName, o.Kind, o.Price, o.Notes, i); err != nil {
			return err
		}
	}

	if _, err := q.Exec(ctx,
		fmt.Sprintf(`DELETE FROM prescription_line WHERE %s = $1`, ownerCol), ownerID); err != nil {
		return err
	}
	for i, p := range prescription {
		if _, err := q.Exec(ctx, fmt.Sprintf(`
			INSERT INTO prescription_line (id, %s, medication_id, medication_name, dosage, quantity, cost, notes, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, ownerCol),
			p.ID, ownerID, p.MedicationID, p.MedicationName, p.Dosage, p.Quantity, p.Cost, p.Notes, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadOrders(ctx context.Context, ownerCol string, ownerID uuid.UUID) ([]ClinicalOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT id, service_item_id, service_name, kind, price, notes
		FROM clinical_order WHERE %s = $1 ORDER BY position`, ownerCol), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []ClinicalOrder
	for rows.Next() {
		var o ClinicalOrder
		if err := rows.Scan(&o.ID, &o.ServiceID, &o.ServiceName, &o.Kind, &o.Price, &o.Notes); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repoPG) loadPrescription(ctx context.Context, ownerCol string, ownerID uuid.UUID) ([]PrescriptionLine, error) {
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT id, medication_id, medication_name, dosage, quantity, cost, notes
		FROM prescription_line WHERE %s = $1 ORDER BY position`, ownerCol), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []PrescriptionLine
	for rows.Next() {
		var p PrescriptionLine
		if err := rows.Scan(&p.ID, &p.MedicationID, &p.MedicationName, &p.Dosage, &p.Quantity, &p.Cost, &p.Notes); err != nil {
			return nil, err
		}
		lines = append(lines, p)
	}
	return lines, rows.Err()
}

// -- Nursing tasks --

const taskCols = `id, admission_id, description, scheduled_at, is_completed, created_by, completed_by, completed_at, created_at`

func (r *repoPG) AddNursingTask(ctx context.Context, t *NursingTask) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO nursing_task (id, admission_id, description, scheduled_at, created_by)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.AdmissionID, t.Description, t.ScheduledAt, t.CreatedBy,
	)
	return err
}

func (r *repoPG) GetNursingTask(ctx context.Context, id uuid.UUID) (*NursingTask, error) {
	t := &NursingTask{}
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+taskCols+` FROM nursing_task WHERE id = $1`, id).
		Scan(&t.ID, &t.AdmissionID, &t.Description, &t.ScheduledAt, &t.IsCompleted,
			&t.CreatedBy, &t.CompletedBy, &t.CompletedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repoPG) UpdateNursingTask(ctx context.Context, t *NursingTask) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE nursing_task SET is_completed=$2, completed_by=$3, completed_at=$4
		WHERE id = $1`,
		t.ID, t.IsCompleted, t.CompletedBy, t.CompletedAt,
	)
	return err
}

func (r *repoPG) loadNursingTasks(ctx context.Context, admissionID uuid.UUID) ([]NursingTask, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+taskCols+` FROM nursing_task WHERE admission_id = $1 ORDER BY scheduled_at`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []NursingTask
	for rows.Next() {
		var t NursingTask
		if err := rows.Scan(&t.ID, &t.AdmissionID, &t.Description, &t.ScheduledAt,
			&t.IsCompleted, &t.CreatedBy, &t.CompletedBy, &t.CompletedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// -- Vital signs --

func (r *repoPG) AddVitalSignRecord(ctx context.Context, rec *VitalSignRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vital_sign_record (id, admission_id, recorded_at, recorded_by, temperature, blood_pressure, heart_rate, spo2, weight, height)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.AdmissionID, rec.RecordedAt, rec.RecordedBy, rec.Temperature,
		rec.BloodPressure, rec.HeartRate, rec.SpO2, rec.Weight, rec.Height,
	)
	return err
}

func (r *repoPG) ListVitalSignRecords(ctx context.Context, admissionID uuid.UUID) ([]*VitalSignRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, admission_id, recorded_at, recorded_by, temperature, blood_pressure, heart_rate, spo2, weight, height
		FROM vital_sign_record WHERE admission_id = $1 ORDER BY recorded_at DESC`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*VitalSignRecord
	for rows.Next() {
		rec := &VitalSignRecord{}
		if err := rows.Scan(&rec.ID, &rec.AdmissionID, &rec.RecordedAt, &rec.RecordedBy,
			&rec.Temperature, &rec.BloodPressure, &rec.HeartRate, &rec.SpO2,
			&rec.Weight, &rec.Height); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
