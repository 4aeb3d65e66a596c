package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients    map[uuid.UUID]*Patient
	withRecords map[uuid.UUID]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients:    make(map[uuid.UUID]*Patient),
		withRecords: make(map[uuid.UUID]bool),
	}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MRN == mrn {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) SearchByName(_ context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if p.FullName == name {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) HasClinicalRecords(_ context.Context, patientID uuid.UUID) (bool, error) {
	return m.withRecords[patientID], nil
}

func TestCreatePatient_GeneratesMRN(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{FullName: "Nguyễn Văn An"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MRN == "" {
		t.Error("expected an MRN to be generated")
	}
}

func TestCreatePatient_NameRequired(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreatePatient(context.Background(), &Patient{FullName: "  "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestCreatePatient_DuplicateMRN(t *testing.T) {
	svc := NewService(newMockRepo())

	first := &Patient{FullName: "Trần Thị Bình", MRN: "PT-0001"}
	if err := svc.CreatePatient(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := &Patient{FullName: "Lê Văn Cường", MRN: "PT-0001"}
	if err := svc.CreatePatient(context.Background(), second); err == nil {
		t.Error("expected duplicate MRN to be rejected")
	}
}

func TestUpdatePatient_MRNIsImmutable(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{FullName: "Phạm Thị Dung", MRN: "PT-0002"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := &Patient{ID: p.ID, FullName: "Phạm Thị Dung", MRN: "PT-9999"}
	if err := svc.UpdatePatient(context.Background(), updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.MRN != "PT-0002" {
		t.Errorf("expected MRN to stay PT-0002, got %s", updated.MRN)
	}
}

func TestDeletePatient_RequiresConfirmation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{FullName: "Hoàng Văn Em"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeletePatient(context.Background(), p.ID, false); err == nil {
		t.Error("expected unconfirmed delete to be rejected")
	}
	if err := svc.DeletePatient(context.Background(), p.ID, true); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeletePatient_BlockedByClinicalRecords(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{FullName: "Đặng Thị Phương"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.withRecords[p.ID] = true

	if err := svc.DeletePatient(context.Background(), p.ID, true); err == nil {
		t.Error("expected delete to be blocked for patient with records")
	}
	if _, err := repo.GetByID(context.Background(), p.ID); err != nil {
		t.Error("expected patient to still exist")
	}
}
