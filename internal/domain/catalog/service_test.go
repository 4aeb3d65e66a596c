package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -- Mock Repositories --

type mockServiceItemRepo struct {
	items map[uuid.UUID]*ServiceItem
}

func newMockServiceItemRepo() *mockServiceItemRepo {
	return &mockServiceItemRepo{items: make(map[uuid.UUID]*ServiceItem)}
}

func (m *mockServiceItemRepo) Create(_ context.Context, item *ServiceItem) error {
	item.ID = uuid.New()
	m.items[item.ID] = item
	return nil
}

func (m *mockServiceItemRepo) GetByID(_ context.Context, id uuid.UUID) (*ServiceItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return item, nil
}

func (m *mockServiceItemRepo) Update(_ context.Context, item *ServiceItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockServiceItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockServiceItemRepo) List(_ context.Context, limit, offset int) ([]*ServiceItem, int, error) {
	var result []*ServiceItem
	for _, item := range m.items {
		result = append(result, item)
	}
	return result, len(result), nil
}

func (m *mockServiceItemRepo) ListByKind(_ context.Context, kind Kind, limit, offset int) ([]*ServiceItem, int, error) {
	var result []*ServiceItem
	for _, item := range m.items {
		if item.Kind == kind {
			result = append(result, item)
		}
	}
	return result, len(result), nil
}

type mockMedicationRepo struct {
	meds map[uuid.UUID]*Medication
}

func newMockMedicationRepo() *mockMedicationRepo {
	return &mockMedicationRepo{meds: make(map[uuid.UUID]*Medication)}
}

func (m *mockMedicationRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	m.meds[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return med, nil
}

func (m *mockMedicationRepo) Update(_ context.Context, med *Medication) error {
	m.meds[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.meds, id)
	return nil
}

func (m *mockMedicationRepo) List(_ context.Context, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.meds {
		result = append(result, med)
	}
	return result, len(result), nil
}

func (m *mockMedicationRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	med, ok := m.meds[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	med.Stock += delta
	return nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockServiceItemRepo(), newMockMedicationRepo())
}

func TestCreateServiceItem_ResolvesKind(t *testing.T) {
	svc := newTestService()

	item := &ServiceItem{
		Name:     "Chụp X-quang ngực",
		Category: "Chẩn đoán hình ảnh",
		Price:    decimal.NewFromInt(120000),
	}
	if err := svc.CreateServiceItem(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Kind != KindImaging {
		t.Errorf("expected kind %s, got %s", KindImaging, item.Kind)
	}
	if !item.Active {
		t.Error("expected new item to be active")
	}
}

func TestCreateServiceItem_NameRequired(t *testing.T) {
	svc := newTestService()

	item := &ServiceItem{Price: decimal.NewFromInt(100)}
	if err := svc.CreateServiceItem(context.Background(), item); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCreateServiceItem_NegativePrice(t *testing.T) {
	svc := newTestService()

	item := &ServiceItem{Name: "Test", Price: decimal.NewFromInt(-1)}
	if err := svc.CreateServiceItem(context.Background(), item); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestUpdateServiceItem_ReResolvesKind(t *testing.T) {
	svc := newTestService()

	item := &ServiceItem{Name: "CBC", Category: "Xét nghiệm", Price: decimal.NewFromInt(50000)}
	if err := svc.CreateServiceItem(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item.Category = "Thủ thuật"
	if err := svc.UpdateServiceItem(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Kind != KindProcedure {
		t.Errorf("expected kind re-resolved to %s, got %s", KindProcedure, item.Kind)
	}
}

func TestListServiceItemsByKind_InvalidKind(t *testing.T) {
	svc := newTestService()

	if _, _, err := svc.ListServiceItemsByKind(context.Background(), Kind("bogus"), 10, 0); err == nil {
		t.Error("expected error for invalid kind")
	}
}

func TestAdjustMedicationStock(t *testing.T) {
	medRepo := newMockMedicationRepo()
	svc := NewService(newMockServiceItemRepo(), medRepo)

	med := &Medication{Name: "Paracetamol 500mg", Cost: decimal.NewFromInt(2000), Stock: 10}
	if err := svc.CreateMedication(context.Background(), med); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.AdjustMedicationStock(context.Background(), med.ID, -4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.Stock != 6 {
		t.Errorf("expected stock 6, got %d", med.Stock)
	}

	if err := svc.AdjustMedicationStock(context.Background(), med.ID, -7); err == nil {
		t.Error("expected error when stock would go negative")
	}
}
