package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is shared by lab orders and radiology exams. Work moves
// strictly forward: ordered, then in-progress, then completed.
type OrderStatus string

const (
	StatusOrdered    OrderStatus = "ordered"
	StatusInProgress OrderStatus = "in-progress"
	StatusCompleted  OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOrdered, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusOrdered:
		return next == StatusInProgress || next == StatusCompleted
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}

// LabOrder is a specimen-based test requested during a visit or
// admission. Rows are seeded by order capture and worked by the lab.
type LabOrder struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	PatientName   string      `db:"patient_name" json:"patient_name"`
	VisitID       *uuid.UUID  `db:"visit_id" json:"visit_id,omitempty"`
	AdmissionID   *uuid.UUID  `db:"admission_id" json:"admission_id,omitempty"`
	OrderID       uuid.UUID   `db:"order_id" json:"order_id"`
	ServiceItemID uuid.UUID   `db:"service_item_id" json:"service_item_id"`
	TestName      string      `db:"test_name" json:"test_name"`
	Status        OrderStatus `db:"status" json:"status"`
	Result        *string     `db:"result" json:"result,omitempty"`
	ResultBy      *string     `db:"result_by" json:"result_by,omitempty"`
	ResultAt      *time.Time  `db:"result_at" json:"result_at,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// RadiologyExam is an imaging study. Same lifecycle as LabOrder but the
// result carries a narrative report plus an optional conclusion line.
type RadiologyExam struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	PatientName   string      `db:"patient_name" json:"patient_name"`
	VisitID       *uuid.UUID  `db:"visit_id" json:"visit_id,omitempty"`
	AdmissionID   *uuid.UUID  `db:"admission_id" json:"admission_id,omitempty"`
	OrderID       uuid.UUID   `db:"order_id" json:"order_id"`
	ServiceItemID uuid.UUID   `db:"service_item_id" json:"service_item_id"`
	ExamName      string      `db:"exam_name" json:"exam_name"`
	Status        OrderStatus `db:"status" json:"status"`
	Report        *string     `db:"report" json:"report,omitempty"`
	Conclusion    *string     `db:"conclusion" json:"conclusion,omitempty"`
	ResultBy      *string     `db:"result_by" json:"result_by,omitempty"`
	ResultAt      *time.Time  `db:"result_at" json:"result_at,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}
