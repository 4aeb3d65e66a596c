package visit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visitflow/visitflow/internal/domain/catalog"
)

// ClinicalOrder is one billable service line on a visit or admission.
// Lines are unique by service within a record. Name, price and kind are
// resolved from the catalog when the line is saved, so later catalog
// edits do not rewrite history.
type ClinicalOrder struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ServiceID   uuid.UUID       `db:"service_item_id" json:"service_id"`
	ServiceName string          `db:"service_name" json:"service_name"`
	Kind        catalog.Kind    `db:"kind" json:"kind"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Notes       string          `db:"notes" json:"notes,omitempty"`
}

// PrescriptionLine is one medication line. Unique by medication within
// a record. Cost is the unit cost at save time.
type PrescriptionLine struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	MedicationID   uuid.UUID       `db:"medication_id" json:"medication_id"`
	MedicationName string          `db:"medication_name" json:"medication_name"`
	Dosage         string          `db:"dosage" json:"dosage,omitempty"`
	Quantity       int             `db:"quantity" json:"quantity"`
	Cost           decimal.Decimal `db:"cost" json:"cost"`
	Notes          string          `db:"notes" json:"notes,omitempty"`
}

// Visit is an outpatient encounter.
type Visit struct {
	ID                uuid.UUID          `db:"id" json:"id"`
	PatientID         uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID          *uuid.UUID         `db:"doctor_id" json:"doctor_id,omitempty"`
	Status            VisitStatus        `db:"status" json:"status"`
	Symptoms          *string            `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis         *string            `db:"diagnosis" json:"diagnosis,omitempty"`
	IsDiagnosisSigned bool               `db:"is_diagnosis_signed" json:"is_diagnosis_signed"`
	ClinicalNote      *string            `db:"clinical_note" json:"clinical_note,omitempty"`
	IsNoteSigned      bool               `db:"is_note_signed" json:"is_note_signed"`
	ClinicalOrders    []ClinicalOrder    `json:"clinical_orders"`
	Prescription      []PrescriptionLine `json:"prescription"`
	VisitDate         time.Time          `db:"visit_date" json:"visit_date"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updated_at"`
}

// Admission is an inpatient stay.
type Admission struct {
	ID                       uuid.UUID          `db:"id" json:"id"`
	PatientID                uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID                 *uuid.UUID         `db:"doctor_id" json:"doctor_id,omitempty"`
	Ward                     *string            `db:"ward" json:"ward,omitempty"`
	Bed                      *string            `db:"bed" json:"bed,omitempty"`
	Status                   AdmissionStatus    `db:"status" json:"status"`
	Diagnosis                *string            `db:"diagnosis" json:"diagnosis,omitempty"`
	IsDiagnosisSigned        bool               `db:"is_diagnosis_signed" json:"is_diagnosis_signed"`
	ClinicalOrders           []ClinicalOrder    `json:"clinical_orders"`
	Prescription             []PrescriptionLine `json:"prescription"`
	NursingTasks             []NursingTask      `json:"nursing_tasks"`
	VitalSignRecords         []VitalSignRecord  `json:"vital_sign_records"`
	DischargeSummary         *string            `db:"discharge_summary" json:"discharge_summary,omitempty"`
	IsDischargeSummarySigned bool               `db:"is_discharge_summary_signed" json:"is_discharge_summary_signed"`
	AdmittedAt               time.Time          `db:"admitted_at" json:"admitted_at"`
	DischargeDate            *time.Time         `db:"discharge_date" json:"discharge_date,omitempty"`
	CreatedAt                time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time          `db:"updated_at" json:"updated_at"`
}

// NursingTask is a scheduled care item on an admission.
type NursingTask struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AdmissionID uuid.UUID  `db:"admission_id" json:"admission_id"`
	Description string     `db:"description" json:"description"`
	ScheduledAt time.Time  `db:"scheduled_at" json:"scheduled_at"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CompletedBy *string    `db:"completed_by" json:"completed_by,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// VitalSignRecord is one timestamped snapshot. Rows are append-only;
// there is no update or delete path anywhere in the engine.
type VitalSignRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AdmissionID   uuid.UUID `db:"admission_id" json:"admission_id"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
	RecordedBy    string    `db:"recorded_by" json:"recorded_by"`
	Temperature   float64   `db:"temperature" json:"temperature"`
	BloodPressure string    `db:"blood_pressure" json:"blood_pressure"`
	HeartRate     int       `db:"heart_rate" json:"heart_rate"`
	SpO2          int       `db:"spo2" json:"spo2"`
	Weight        *float64  `db:"weight" json:"weight,omitempty"`
	Height        *float64  `db:"height" json:"height,omitempty"`
}

// OrderSnapshot is the billable content of a record at one point in
// time. The fan-out diff compares two snapshots.
type OrderSnapshot struct {
	ClinicalOrders []ClinicalOrder
	Prescription   []PrescriptionLine
}
