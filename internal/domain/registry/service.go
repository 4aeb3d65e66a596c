package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.MRN == "" {
		p.MRN = generateMRN()
	}
	if existing, err := s.repo.GetByMRN(ctx, p.MRN); err == nil && existing != nil {
		return fmt.Errorf("mrn %s already in use", p.MRN)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetPatientByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.repo.GetByMRN(ctx, mrn)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("patient not found: %w", err)
	}
	// The MRN is assigned once at registration and never edited.
	p.MRN = current.MRN
	return s.repo.Update(ctx, p)
}

// DeletePatient removes a directory entry. The caller must confirm, and
// patients that already have visits or admissions cannot be deleted.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("deletion requires confirmation")
	}
	hasRecords, err := s.repo.HasClinicalRecords(ctx, id)
	if err != nil {
		return err
	}
	if hasRecords {
		return fmt.Errorf("patient has clinical records and cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.SearchByName(ctx, name, limit, offset)
}

func generateMRN() string {
	return "PT-" + strings.ToUpper(uuid.New().String()[:8])
}
