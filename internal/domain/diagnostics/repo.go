package diagnostics

import (
	"context"

	"github.com/google/uuid"
)

type LabRepository interface {
	Create(ctx context.Context, o *LabOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error)
	Update(ctx context.Context, o *LabOrder) error
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
	List(ctx context.Context, status OrderStatus, limit, offset int) ([]*LabOrder, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error)
}

type RadiologyRepository interface {
	Create(ctx context.Context, e *RadiologyExam) error
	GetByID(ctx context.Context, id uuid.UUID) (*RadiologyExam, error)
	Update(ctx context.Context, e *RadiologyExam) error
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
	List(ctx context.Context, status OrderStatus, limit, offset int) ([]*RadiologyExam, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*RadiologyExam, int, error)
}
