package diagnostics

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockLabRepo struct {
	orders map[uuid.UUID]*LabOrder
}

func newMockLabRepo() *mockLabRepo {
	return &mockLabRepo{orders: make(map[uuid.UUID]*LabOrder)}
}

func (m *mockLabRepo) Create(_ context.Context, o *LabOrder) error {
	o.ID = uuid.New()
	if o.Status == "" {
		o.Status = StatusOrdered
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id uuid.UUID) (*LabOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return o, nil
}

func (m *mockLabRepo) Update(_ context.Context, o *LabOrder) error {
	m.orders[o.ID] = o
	return nil
}

func (m *mockLabRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	for id, o := range m.orders {
		if o.OrderID == orderID {
			delete(m.orders, id)
		}
	}
	return nil
}

func (m *mockLabRepo) List(_ context.Context, status OrderStatus, limit, offset int) ([]*LabOrder, int, error) {
	var result []*LabOrder
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			result = append(result, o)
		}
	}
	return result, len(result), nil
}

func (m *mockLabRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error) {
	var result []*LabOrder
	for _, o := range m.orders {
		if o.PatientID == patientID {
			result = append(result, o)
		}
	}
	return result, len(result), nil
}

type mockRadiologyRepo struct {
	exams map[uuid.UUID]*RadiologyExam
}

func newMockRadiologyRepo() *mockRadiologyRepo {
	return &mockRadiologyRepo{exams: make(map[uuid.UUID]*RadiologyExam)}
}

func (m *mockRadiologyRepo) Create(_ context.Context, e *RadiologyExam) error {
	e.ID = uuid.New()
	if e.Status == "" {
		e.Status = StatusOrdered
	}
	m.exams[e.ID] = e
	return nil
}

func (m *mockRadiologyRepo) GetByID(_ context.Context, id uuid.UUID) (*RadiologyExam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return e, nil
}

func (m *mockRadiologyRepo) Update(_ context.Context, e *RadiologyExam) error {
	m.exams[e.ID] = e
	return nil
}

func (m *mockRadiologyRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	for id, e := range m.exams {
		if e.OrderID == orderID {
			delete(m.exams, id)
		}
	}
	return nil
}

func (m *mockRadiologyRepo) List(_ context.Context, status OrderStatus, limit, offset int) ([]*RadiologyExam, int, error) {
	var result []*RadiologyExam
	for _, e := range m.exams {
		if status == "" || e.Status == status {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func (m *mockRadiologyRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*RadiologyExam, int, error) {
	var result []*RadiologyExam
	for _, e := range m.exams {
		if e.PatientID == patientID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusOrdered, StatusInProgress, true},
		{StatusOrdered, StatusCompleted, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusOrdered, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusOrdered, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestEnterLabResult_CompletesOrder(t *testing.T) {
	labs := newMockLabRepo()
	svc := NewService(labs, newMockRadiologyRepo())
	ctx := context.Background()

	o := &LabOrder{PatientID: uuid.New(), PatientName: "Nguyễn Văn An", TestName: "Công thức máu"}
	if err := labs.Create(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.EnterLabResult(ctx, o.ID, "WBC 7.2, RBC 4.8, PLT 250", "bs.tran")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected status %s, got %s", StatusCompleted, got.Status)
	}
	if got.Result == nil || *got.Result == "" {
		t.Error("expected result to be recorded")
	}
	if got.ResultBy == nil || *got.ResultBy != "bs.tran" {
		t.Error("expected result_by to be stamped")
	}
	if got.ResultAt == nil {
		t.Error("expected result_at to be stamped")
	}
}

func TestEnterLabResult_CompletedIsReadOnly(t *testing.T) {
	labs := newMockLabRepo()
	svc := NewService(labs, newMockRadiologyRepo())
	ctx := context.Background()

	o := &LabOrder{PatientID: uuid.New(), TestName: "Glucose"}
	if err := labs.Create(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.EnterLabResult(ctx, o.ID, "5.4 mmol/L", "bs.tran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.EnterLabResult(ctx, o.ID, "overwritten", "bs.le"); err == nil {
		t.Error("expected completed order to reject a second result")
	}
	if *labs.orders[o.ID].Result != "5.4 mmol/L" {
		t.Error("expected original result to be preserved")
	}
}

func TestEnterLabResult_EmptyResultRejected(t *testing.T) {
	labs := newMockLabRepo()
	svc := NewService(labs, newMockRadiologyRepo())
	ctx := context.Background()

	o := &LabOrder{PatientID: uuid.New(), TestName: "Glucose"}
	if err := labs.Create(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.EnterLabResult(ctx, o.ID, "  ", "bs.tran"); err == nil {
		t.Error("expected blank result to be rejected")
	}
}

func TestStartLabOrder(t *testing.T) {
	labs := newMockLabRepo()
	svc := NewService(labs, newMockRadiologyRepo())
	ctx := context.Background()

	o := &LabOrder{PatientID: uuid.New(), TestName: "HbA1c"}
	if err := labs.Create(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.StartLabOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("expected status %s, got %s", StatusInProgress, got.Status)
	}
	if _, err := svc.StartLabOrder(ctx, o.ID); err == nil {
		t.Error("expected starting twice to be rejected")
	}
}

func TestEnterRadiologyResult(t *testing.T) {
	exams := newMockRadiologyRepo()
	svc := NewService(newMockLabRepo(), exams)
	ctx := context.Background()

	e := &RadiologyExam{PatientID: uuid.New(), PatientName: "Trần Thị Bình", ExamName: "Chụp X-quang ngực"}
	if err := exams.Create(ctx, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.EnterRadiologyResult(ctx, e.ID, "Phổi hai bên sáng đều, không thấy tổn thương khu trú.", "Bình thường", "bs.pham")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected status %s, got %s", StatusCompleted, got.Status)
	}
	if got.Report == nil || got.Conclusion == nil {
		t.Error("expected report and conclusion to be recorded")
	}

	if _, err := svc.EnterRadiologyResult(ctx, e.ID, "second report", "", "bs.pham"); err == nil {
		t.Error("expected completed exam to reject a second result")
	}
}

func TestListLabOrders_InvalidStatus(t *testing.T) {
	svc := NewService(newMockLabRepo(), newMockRadiologyRepo())

	if _, _, err := svc.ListLabOrders(context.Background(), OrderStatus("bogus"), 10, 0); err == nil {
		t.Error("expected error for invalid status filter")
	}
}
