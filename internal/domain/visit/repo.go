package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/visitflow/visitflow/internal/domain/catalog"
	"github.com/visitflow/visitflow/internal/domain/diagnostics"
	"github.com/visitflow/visitflow/internal/domain/ledger"
	"github.com/visitflow/visitflow/internal/domain/registry"
)

// Repository persists visits, admissions and their child rows. Get
// methods load the full record including line items; admissions also
// load nursing tasks and vitals.
type Repository interface {
	CreateVisit(ctx context.Context, v *Visit) error
	GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error)
	UpdateVisit(ctx context.Context, v *Visit) error
	ListVisits(ctx context.Context, status VisitStatus, limit, offset int) ([]*Visit, int, error)
	ReplaceVisitOrders(ctx context.Context, visitID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error

	CreateAdmission(ctx context.Context, a *Admission) error
	GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error)
	UpdateAdmission(ctx context.Context, a *Admission) error
	ListAdmissions(ctx context.Context, status AdmissionStatus, limit, offset int) ([]*Admission, int, error)
	ReplaceAdmissionOrders(ctx context.Context, admissionID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error

	AddNursingTask(ctx context.Context, t *NursingTask) error
	GetNursingTask(ctx context.Context, id uuid.UUID) (*NursingTask, error)
	UpdateNursingTask(ctx context.Context, t *NursingTask) error

	AddVitalSignRecord(ctx context.Context, r *VitalSignRecord) error
	ListVitalSignRecords(ctx context.Context, admissionID uuid.UUID) ([]*VitalSignRecord, error)
}

// Narrow views of the collaborator repositories. The concrete pg repos
// in their home packages satisfy these directly.

type PatientReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*registry.Patient, error)
}

type ServiceItemReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.ServiceItem, error)
}

type MedicationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Medication, error)
}

type LedgerWriter interface {
	Create(ctx context.Context, e *ledger.Entry) error
}

type LabWriter interface {
	Create(ctx context.Context, o *diagnostics.LabOrder) error
}

type RadiologyWriter interface {
	Create(ctx context.Context, e *diagnostics.RadiologyExam) error
}

// Confirmer gates destructive and irreversible operations. The HTTP
// layer answers from an explicit confirm field in the request body; a
// declined confirmation makes the operation a true no-op.
type Confirmer interface {
	Confirm(ctx context.Context, action string) (bool, error)
}

// ConfirmFlag is a Confirmer answered in advance, which is how a
// request body carries the user's decision.
type ConfirmFlag bool

func (f ConfirmFlag) Confirm(context.Context, string) (bool, error) { return bool(f), nil }
