package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	services    ServiceItemRepository
	medications MedicationRepository
}

func NewService(services ServiceItemRepository, medications MedicationRepository) *Service {
	return &Service{services: services, medications: medications}
}

func (s *Service) CreateServiceItem(ctx context.Context, item *ServiceItem) error {
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	item.Kind = ResolveKind(item.Category)
	item.Active = true
	return s.services.Create(ctx, item)
}

func (s *Service) GetServiceItem(ctx context.Context, id uuid.UUID) (*ServiceItem, error) {
	return s.services.GetByID(ctx, id)
}

func (s *Service) UpdateServiceItem(ctx context.Context, item *ServiceItem) error {
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	// Category may have changed; the kind always follows it.
	item.Kind = ResolveKind(item.Category)
	return s.services.Update(ctx, item)
}

func (s *Service) DeleteServiceItem(ctx context.Context, id uuid.UUID) error {
	return s.services.Delete(ctx, id)
}

func (s *Service) ListServiceItems(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error) {
	return s.services.List(ctx, limit, offset)
}

func (s *Service) ListServiceItemsByKind(ctx context.Context, kind Kind, limit, offset int) ([]*ServiceItem, int, error) {
	switch kind {
	case KindLab, KindImaging, KindProcedure, KindOther:
	default:
		return nil, 0, fmt.Errorf("invalid kind: %s", kind)
	}
	return s.services.ListByKind(ctx, kind, limit, offset)
}

func (s *Service) CreateMedication(ctx context.Context, med *Medication) error {
	if med.Name == "" {
		return fmt.Errorf("name is required")
	}
	if med.Cost.IsNegative() {
		return fmt.Errorf("cost must not be negative")
	}
	if med.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return s.medications.Create(ctx, med)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.medications.GetByID(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, med *Medication) error {
	if med.Name == "" {
		return fmt.Errorf("name is required")
	}
	if med.Cost.IsNegative() {
		return fmt.Errorf("cost must not be negative")
	}
	return s.medications.Update(ctx, med)
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.medications.Delete(ctx, id)
}

func (s *Service) ListMedications(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	return s.medications.List(ctx, limit, offset)
}

// AdjustMedicationStock changes stock by delta, rejecting adjustments that
// would take stock below zero.
func (s *Service) AdjustMedicationStock(ctx context.Context, id uuid.UUID, delta int) error {
	med, err := s.medications.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("medication not found: %w", err)
	}
	if med.Stock+delta < 0 {
		return fmt.Errorf("stock cannot go below zero (current %d, delta %d)", med.Stock, delta)
	}
	return s.medications.AdjustStock(ctx, id, delta)
}
