package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visitflow/visitflow/internal/domain/diagnostics"
	"github.com/visitflow/visitflow/internal/domain/ledger"
	"github.com/visitflow/visitflow/internal/platform/db"
)

// Service is the visit lifecycle engine: status transitions, order
// capture with billing fan-out, sign-off locking, and the inpatient
// nursing surface.
type Service struct {
	repo        Repository
	patients    PatientReader
	services    ServiceItemReader
	medications MedicationReader
	ledger      LedgerWriter
	labs        LabWriter
	radiology   RadiologyWriter
	tx          db.TxRunner
}

func NewService(
	repo Repository,
	patients PatientReader,
	services ServiceItemReader,
	medications MedicationReader,
	ledgerW LedgerWriter,
	labs LabWriter,
	radiology RadiologyWriter,
	tx db.TxRunner,
) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		services:    services,
		medications: medications,
		ledger:      ledgerW,
		labs:        labs,
		radiology:   radiology,
		tx:          tx,
	}
}

// -- Creation and reads --

func (s *Service) CreateVisit(ctx context.Context, v *Visit) error {
	if _, err := s.patients.GetByID(ctx, v.PatientID); err != nil {
		return validationf("patient %s not found", v.PatientID)
	}
	if v.Status == "" {
		v.Status = VisitWaiting
	}
	if !v.Status.Valid() {
		return validationf("invalid visit status: %s", v.Status)
	}
	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now()
	}
	return s.repo.CreateVisit(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetVisit(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, status VisitStatus, limit, offset int) ([]*Visit, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, validationf("invalid visit status: %s", status)
	}
	return s.repo.ListVisits(ctx, status, limit, offset)
}

func (s *Service) CreateAdmission(ctx context.Context, a *Admission) error {
	if _, err := s.patients.GetByID(ctx, a.PatientID); err != nil {
		return validationf("patient %s not found", a.PatientID)
	}
	if a.Status == "" {
		a.Status = AdmissionAdmitted
	}
	if a.Status == AdmissionDischarged {
		return validationf("an admission cannot be created discharged")
	}
	if !a.Status.Valid() {
		return validationf("invalid admission status: %s", a.Status)
	}
	if a.AdmittedAt.IsZero() {
		a.AdmittedAt = time.Now()
	}
	return s.repo.CreateAdmission(ctx, a)
}

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.repo.GetAdmission(ctx, id)
}

func (s *Service) ListAdmissions(ctx context.Context, status AdmissionStatus, limit, offset int) ([]*Admission, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, validationf("invalid admission status: %s", status)
	}
	return s.repo.ListAdmissions(ctx, status, limit, offset)
}

// -- Status state machine --

func (s *Service) UpdateVisitStatus(ctx context.Context, id uuid.UUID, next VisitStatus) (*Visit, error) {
	v, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("visit not found: %w", err)
	}
	if !next.Valid() {
		return nil, validationf("invalid visit status: %s", next)
	}
	if v.Status.Terminal() {
		return nil, preconditionf("visit is %s; status can no longer change", v.Status)
	}
	if !v.Status.CanTransitionTo(next) {
		return nil, preconditionf("cannot move visit from %s to %s", v.Status, next)
	}
	v.Status = next
	if err := s.repo.UpdateVisit(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) UpdateAdmissionStatus(ctx context.Context, id uuid.UUID, next AdmissionStatus) (*Admission, error) {
	a, err := s.repo.GetAdmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("admission not found: %w", err)
	}
	if !next.Valid() {
		return nil, validationf("invalid admission status: %s", next)
	}
	if a.Status.Terminal() {
		return nil, preconditionf("admission is discharged; status can no longer change")
	}
	if next == AdmissionDischarged {
		return nil, preconditionf("discharged is only reachable through the discharge sign-off")
	}
	if !a.Status.CanTransitionTo(next) {
		return nil, preconditionf("cannot move admission from %s to %s", a.Status, next)
	}
	a.Status = next
	if err := s.repo.UpdateAdmission(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// -- Order capture and fan-out --

// OrderLineInput is a submitted service line. Name, price and kind are
// resolved server-side from the catalog.
type OrderLineInput struct {
	ServiceID uuid.UUID `json:"service_id"`
	Notes     string    `json:"notes"`
}

// PrescriptionLineInput is a submitted medication line.
type PrescriptionLineInput struct {
	MedicationID uuid.UUID `json:"medication_id"`
	Dosage       string    `json:"dosage"`
	Quantity     int       `json:"quantity"`
	Notes        string    `json:"notes"`
}

// SaveResult reports what one save produced. SuggestedStatus is a hint
// only; the server never applies it.
type SaveResult struct {
	Visit           *Visit                       `json:"visit,omitempty"`
	Admission       *Admission                   `json:"admission,omitempty"`
	NewLedger       []*ledger.Entry              `json:"new_ledger_entries"`
	NewLabOrders    []*diagnostics.LabOrder      `json:"new_lab_orders"`
	NewRadiology    []*diagnostics.RadiologyExam `json:"new_radiology_exams"`
	SuggestedStatus *VisitStatus                 `json:"suggested_status,omitempty"`
}

// SaveVisitOrders replaces a visit's order and prescription lists and
// fans out derived records for lines that are new relative to the last
// persisted state. The whole save commits in one transaction.
func (s *Service) SaveVisitOrders(ctx context.Context, visitID uuid.UUID, orders []OrderLineInput, prescription []PrescriptionLineInput, actor string) (*SaveResult, error) {
	v, err := s.repo.GetVisit(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("visit not found: %w", err)
	}

	patient, err := s.patients.GetByID(ctx, v.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found: %w", err)
	}

	newOrders, newRx, err := s.resolveLines(ctx, v.ClinicalOrders, v.Prescription, orders, prescription)
	if err != nil {
		return nil, err
	}

	ref := RecordRef{PatientID: v.PatientID, PatientName: patient.FullName, VisitID: &v.ID}
	prev := OrderSnapshot{ClinicalOrders: v.ClinicalOrders, Prescription: v.Prescription}
	updated := OrderSnapshot{ClinicalOrders: newOrders, Prescription: newRx}
	fanOut := ComputeFanOut(prev, updated, ref, time.Now())

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.ReplaceVisitOrders(ctx, v.ID, newOrders, newRx); err != nil {
			return err
		}
		if err := s.persistFanOut(ctx, fanOut, actor); err != nil {
			return err
		}
		return s.repo.UpdateVisit(ctx, v)
	})
	if err != nil {
		return nil, err
	}

	v.ClinicalOrders = newOrders
	v.Prescription = newRx

	result := &SaveResult{
		Visit:        v,
		NewLedger:    fanOut.LedgerEntries,
		NewLabOrders: fanOut.LabOrders,
		NewRadiology: fanOut.RadiologyExams,
	}
	// A new lab or imaging order during consultation suggests moving the
	// visit on to await its results. The staff member decides.
	if v.Status == VisitInConsultation && len(fanOut.LabOrders)+len(fanOut.RadiologyExams) > 0 {
		suggested := VisitAwaitingResults
		result.SuggestedStatus = &suggested
	}
	return result, nil
}

// SaveAdmissionOrders is the inpatient counterpart of SaveVisitOrders.
func (s *Service) SaveAdmissionOrders(ctx context.Context, admissionID uuid.UUID, orders []OrderLineInput, prescription []PrescriptionLineInput, actor string) (*SaveResult, error) {
	a, err := s.repo.GetAdmission(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("admission not found: %w", err)
	}
	if a.Status.Terminal() {
		return nil, preconditionf("admission is discharged; orders are locked")
	}

	patient, err := s.patients.GetByID(ctx, a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found: %w", err)
	}

	newOrders, newRx, err := s.resolveLines(ctx, a.ClinicalOrders, a.Prescription, orders, prescription)
	if err != nil {
		return nil, err
	}

	ref := RecordRef{PatientID: a.PatientID, PatientName: patient.FullName, AdmissionID: &a.ID}
	prev := OrderSnapshot{ClinicalOrders: a.ClinicalOrders, Prescription: a.Prescription}
	updated := OrderSnapshot{ClinicalOrders: newOrders, Prescription: newRx}
	fanOut := ComputeFanOut(prev, updated, ref, time.Now())

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.ReplaceAdmissionOrders(ctx, a.ID, newOrders, newRx); err != nil {
			return err
		}
		if err := s.persistFanOut(ctx, fanOut, actor); err != nil {
			return err
		}
		return s.repo.UpdateAdmission(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	a.ClinicalOrders = newOrders
	a.Prescription = newRx

	return &SaveResult{
		Admission:    a,
		NewLedger:    fanOut.LedgerEntries,
		NewLabOrders: fanOut.LabOrders,
		NewRadiology: fanOut.RadiologyExams,
	}, nil
}

// resolveLines validates submitted lines and resolves names, prices and
// kinds from the catalog. Lines surviving from the previous save keep
// their ids so derived records stay traceable.
func (s *Service) resolveLines(ctx context.Context, prevOrders []ClinicalOrder, prevRx []PrescriptionLine, orders []OrderLineInput, prescription []PrescriptionLineInput) ([]ClinicalOrder, []PrescriptionLine, error) {
	prevOrderIDs := make(map[uuid.UUID]uuid.UUID, len(prevOrders))
	for _, o := range prevOrders {
		prevOrderIDs[o.ServiceID] = o.ID
	}
	prevRxIDs := make(map[uuid.UUID]uuid.UUID, len(prevRx))
	for _, p := range prevRx {
		prevRxIDs[p.MedicationID] = p.ID
	}

	seenServices := make(map[uuid.UUID]bool, len(orders))
	newOrders := make([]ClinicalOrder, 0, len(orders))
	for _, in := range orders {
		if seenServices[in.ServiceID] {
			return nil, nil, validationf("duplicate service %s in order list", in.ServiceID)
		}
		seenServices[in.ServiceID] = true

		item, err := s.services.GetByID(ctx, in.ServiceID)
		if err != nil {
			return nil, nil, validationf("service %s not found", in.ServiceID)
		}
		line := ClinicalOrder{
			ID:          uuid.New(),
			ServiceID:   item.ID,
			ServiceName: item.Name,
			Kind:        item.Kind,
			Price:       item.Price,
			Notes:       in.Notes,
		}
		if id, ok := prevOrderIDs[in.ServiceID]; ok {
			line.ID = id
		}
		newOrders = append(newOrders, line)
	}

	seenMeds := make(map[uuid.UUID]bool, len(prescription))
	newRx := make([]PrescriptionLine, 0, len(prescription))
	for _, in := range prescription {
		if seenMeds[in.MedicationID] {
			return nil, nil, validationf("duplicate medication %s in prescription", in.MedicationID)
		}
		seenMeds[in.MedicationID] = true

		if in.Quantity < 1 {
			return nil, nil, validationf("medication %s quantity must be at least 1", in.MedicationID)
		}
		med, err := s.medications.GetByID(ctx, in.MedicationID)
		if err != nil {
			return nil, nil, validationf("medication %s not found", in.MedicationID)
		}
		line := PrescriptionLine{
			ID:             uuid.New(),
			MedicationID:   med.ID,
			MedicationName: med.Name,
			Dosage:         in.Dosage,
			Quantity:       in.Quantity,
			Cost:           med.Cost,
			Notes:          in.Notes,
		}
		if id, ok := prevRxIDs[in.MedicationID]; ok {
			line.ID = id
		}
		newRx = append(newRx, line)
	}

	return newOrders, newRx, nil
}

func (s *Service) persistFanOut(ctx context.Context, fanOut FanOut, actor string) error {
	for _, e := range fanOut.LedgerEntries {
		e.RecordedBy = actor
		if err := s.ledger.Create(ctx, e); err != nil {
			return err
		}
	}
	for _, o := range fanOut.LabOrders {
		if err := s.labs.Create(ctx, o); err != nil {
			return err
		}
	}
	for _, e := range fanOut.RadiologyExams {
		if err := s.radiology.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// -- Sign-off / record locking --

// SignVisitNote commits the submitted note text and locks it. A signed
// note never changes again.
func (s *Service) SignVisitNote(ctx context.Context, id uuid.UUID, text string) (*Visit, error) {
	v, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("visit not found: %w", err)
	}
	if v.IsNoteSigned {
		return nil, preconditionf("clinical note is already signed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationf("note text is required")
	}
	v.ClinicalNote = &text
	v.IsNoteSigned = true
	if err := s.repo.UpdateVisit(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) SignVisitDiagnosis(ctx context.Context, id uuid.UUID, text string) (*Visit, error) {
	v, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("visit not found: %w", err)
	}
	if v.IsDiagnosisSigned {
		return nil, preconditionf("diagnosis is already signed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationf("diagnosis text is required")
	}
	v.Diagnosis = &text
	v.IsDiagnosisSigned = true
	if err := s.repo.UpdateVisit(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) SignAdmissionDiagnosis(ctx context.Context, id uuid.UUID, text string) (*Admission, error) {
	a, err := s.repo.GetAdmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("admission not found: %w", err)
	}
	if a.IsDiagnosisSigned {
		return nil, preconditionf("diagnosis is already signed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationf("diagnosis text is required")
	}
	a.Diagnosis = &text
	a.IsDiagnosisSigned = true
	if err := s.repo.UpdateAdmission(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateVisitDetails edits the free-text clinical fields. Signed fields
// keep their stored text no matter what the caller submits, and signed
// flags are never unset.
func (s *Service) UpdateVisitDetails(ctx context.Context, id uuid.UUID, doctorID *uuid.UUID, symptoms, diagnosis, note *string) (*Visit, error) {
	v, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("visit not found: %w", err)
	}
	if doctorID != nil {
		v.DoctorID = doctorID
	}
	if symptoms != nil {
		v.Symptoms = symptoms
	}
	if diagnosis != nil && !v.IsDiagnosisSigned {
		v.Diagnosis = diagnosis
	}
	if note != nil && !v.IsNoteSigned {
		v.ClinicalNote = note
	}
	if err := s.repo.UpdateVisit(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// SignDischarge finalizes an inpatient stay: it commits the summary
// text, bills the total of all clinical order prices as one final
// ledger entry, and moves the admission to its terminal state. All of
// it commits in one transaction. Prescription costs are deliberately
// not part of this final bill; they were already billed line by line at
// order time.
func (s *Service) SignDischarge(ctx context.Context, id uuid.UUID, summary string, confirm Confirmer, actor string) (*Admission, error) {
	a, err := s.repo.GetAdmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("admission not found: %w", err)
	}
	if a.Status.Terminal() {
		return nil, preconditionf("admission is already discharged")
	}
	if a.IsDischargeSummarySigned {
		return nil, preconditionf("discharge summary is already signed")
	}
	if strings.TrimSpace(summary) == "" {
		return nil, validationf("discharge summary is required")
	}

	ok, err := confirm.Confirm(ctx, "sign discharge")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, preconditionf("discharge was not confirmed; nothing changed")
	}

	patient, err := s.patients.GetByID(ctx, a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found: %w", err)
	}

	total := decimal.Zero
	for _, o := range a.ClinicalOrders {
		total = total.Add(o.Price)
	}

	now := time.Now()
	a.DischargeSummary = &summary
	a.IsDischargeSummarySigned = true
	a.Status = AdmissionDischarged
	a.DischargeDate = &now

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if total.IsPositive() {
			entry := &ledger.Entry{
				Type:        ledger.EntryTypeIncome,
				Amount:      total,
				Description: fmt.Sprintf("Thanh toán viện phí - BN %s", patient.FullName),
				PatientID:   &a.PatientID,
				AdmissionID: &a.ID,
				RecordedBy:  actor,
			}
			if err := s.ledger.Create(ctx, entry); err != nil {
				return err
			}
		}
		return s.repo.UpdateAdmission(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// -- Nursing tasks and vitals --

func (s *Service) AddNursingTask(ctx context.Context, admissionID uuid.UUID, description string, scheduledAt time.Time, actor string) (*NursingTask, error) {
	a, err := s.repo.GetAdmission(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("admission not found: %w", err)
	}
	if a.Status.Terminal() {
		return nil, preconditionf("admission is discharged; tasks are locked")
	}
	if strings.TrimSpace(description) == "" {
		return nil, validationf("task description is required")
	}
	if scheduledAt.IsZero() {
		scheduledAt = time.Now()
	}
	t := &NursingTask{
		AdmissionID: admissionID,
		Description: description,
		ScheduledAt: scheduledAt,
		CreatedBy:   actor,
	}
	if err := s.repo.AddNursingTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ToggleNursingTask flips completion. Completing stamps who and when;
// un-completing clears both, so toggling twice restores the original
// state exactly.
func (s *Service) ToggleNursingTask(ctx context.Context, admissionID, taskID uuid.UUID, actor string) (*NursingTask, error) {
	t, err := s.repo.GetNursingTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("nursing task not found: %w", err)
	}
	if t.AdmissionID != admissionID {
		return nil, validationf("task does not belong to this admission")
	}
	if t.IsCompleted {
		t.IsCompleted = false
		t.CompletedBy = nil
		t.CompletedAt = nil
	} else {
		now := time.Now()
		t.IsCompleted = true
		t.CompletedBy = &actor
		t.CompletedAt = &now
	}
	if err := s.repo.UpdateNursingTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RecordVitalSigns appends one snapshot. Temperature, blood pressure,
// heart rate and SpO2 are all required; nothing is written otherwise.
func (s *Service) RecordVitalSigns(ctx context.Context, admissionID uuid.UUID, rec *VitalSignRecord, actor string) error {
	if _, err := s.repo.GetAdmission(ctx, admissionID); err != nil {
		return fmt.Errorf("admission not found: %w", err)
	}
	if rec.Temperature <= 0 {
		return validationf("temperature is required")
	}
	if strings.TrimSpace(rec.BloodPressure) == "" {
		return validationf("blood pressure is required")
	}
	if rec.HeartRate <= 0 {
		return validationf("heart rate is required")
	}
	if rec.SpO2 <= 0 {
		return validationf("SpO2 is required")
	}
	rec.AdmissionID = admissionID
	rec.RecordedBy = actor
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	return s.repo.AddVitalSignRecord(ctx, rec)
}

func (s *Service) ListVitalSigns(ctx context.Context, admissionID uuid.UUID) ([]*VitalSignRecord, error) {
	return s.repo.ListVitalSignRecords(ctx, admissionID)
}
