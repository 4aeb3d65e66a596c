package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ServiceItemRepository interface {
	Create(ctx context.Context, item *ServiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceItem, error)
	Update(ctx context.Context, item *ServiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error)
	ListByKind(ctx context.Context, kind Kind, limit, offset int) ([]*ServiceItem, int, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, med *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, med *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Medication, int, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}
