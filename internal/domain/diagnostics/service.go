package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	labs  LabRepository
	exams RadiologyRepository
}

func NewService(labs LabRepository, exams RadiologyRepository) *Service {
	return &Service{labs: labs, exams: exams}
}

func (s *Service) GetLabOrder(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) ListLabOrders(ctx context.Context, status OrderStatus, limit, offset int) ([]*LabOrder, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.labs.List(ctx, status, limit, offset)
}

func (s *Service) ListLabOrdersByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabOrder, int, error) {
	return s.labs.ListByPatient(ctx, patientID, limit, offset)
}

// StartLabOrder claims an ordered test for processing.
func (s *Service) StartLabOrder(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	o, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lab order not found: %w", err)
	}
	if !o.Status.CanTransitionTo(StatusInProgress) {
		return nil, fmt.Errorf("lab order is %s and cannot be started", o.Status)
	}
	o.Status = StatusInProgress
	if err := s.labs.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// EnterLabResult records the result text and completes the order.
// Completed orders are read-only.
func (s *Service) EnterLabResult(ctx context.Context, id uuid.UUID, result, enteredBy string) (*LabOrder, error) {
	if strings.TrimSpace(result) == "" {
		return nil, fmt.Errorf("result is required")
	}
	o, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lab order not found: %w", err)
	}
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return nil, fmt.Errorf("lab order is %s and cannot accept a result", o.Status)
	}
	now := time.Now()
	o.Status = StatusCompleted
	o.Result = &result
	o.ResultBy = &enteredBy
	o.ResultAt = &now
	if err := s.labs.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetRadiologyExam(ctx context.Context, id uuid.UUID) (*RadiologyExam, error) {
	return s.exams.GetByID(ctx, id)
}

func (s *Service) ListRadiologyExams(ctx context.Context, status OrderStatus, limit, offset int) ([]*RadiologyExam, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.exams.List(ctx, status, limit, offset)
}

func (s *Service) ListRadiologyExamsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*RadiologyExam, int, error) {
	return s.exams.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) StartRadiologyExam(ctx context.Context, id uuid.UUID) (*RadiologyExam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("radiology exam not found: %w", err)
	}
	if !e.Status.CanTransitionTo(StatusInProgress) {
		return nil, fmt.Errorf("radiology exam is %s and cannot be started", e.Status)
	}
	e.Status = StatusInProgress
	if err := s.exams.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// EnterRadiologyResult records the report and completes the exam. The
// conclusion is optional; the report body is not.
func (s *Service) EnterRadiologyResult(ctx context.Context, id uuid.UUID, report, conclusion, enteredBy string) (*RadiologyExam, error) {
	if strings.TrimSpace(report) == "" {
		return nil, fmt.Errorf("report is required")
	}
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("radiology exam not found: %w", err)
	}
	if !e.Status.CanTransitionTo(StatusCompleted) {
		return nil, fmt.Errorf("radiology exam is %s and cannot accept a result", e.Status)
	}
	now := time.Now()
	e.Status = StatusCompleted
	e.Report = &report
	if conclusion != "" {
		e.Conclusion = &conclusion
	}
	e.ResultBy = &enteredBy
	e.ResultAt = &now
	if err := s.exams.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
