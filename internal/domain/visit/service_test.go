package visit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visitflow/visitflow/internal/domain/catalog"
	"github.com/visitflow/visitflow/internal/domain/diagnostics"
	"github.com/visitflow/visitflow/internal/domain/ledger"
	"github.com/visitflow/visitflow/internal/domain/registry"
)

// -- Mocks --

type mockRepo struct {
	visits     map[uuid.UUID]*Visit
	admissions map[uuid.UUID]*Admission
	tasks      map[uuid.UUID]*NursingTask
	vitals     map[uuid.UUID][]*VitalSignRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		visits:     make(map[uuid.UUID]*Visit),
		admissions: make(map[uuid.UUID]*Admission),
		tasks:      make(map[uuid.UUID]*NursingTask),
		vitals:     make(map[uuid.UUID][]*VitalSignRecord),
	}
}

func copyVisit(v *Visit) *Visit {
	cp := *v
	cp.ClinicalOrders = append([]ClinicalOrder(nil), v.ClinicalOrders...)
	cp.Prescription = append([]PrescriptionLine(nil), v.Prescription...)
	return &cp
}

func copyAdmission(a *Admission) *Admission {
	cp := *a
	cp.ClinicalOrders = append([]ClinicalOrder(nil), a.ClinicalOrders...)
	cp.Prescription = append([]PrescriptionLine(nil), a.Prescription...)
	cp.NursingTasks = append([]NursingTask(nil), a.NursingTasks...)
	cp.VitalSignRecords = append([]VitalSignRecord(nil), a.VitalSignRecords...)
	return &cp
}

func (m *mockRepo) CreateVisit(_ context.Context, v *Visit) error {
	v.ID = uuid.New()
	m.visits[v.ID] = copyVisit(v)
	return nil
}

func (m *mockRepo) GetVisit(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return copyVisit(v), nil
}

func (m *mockRepo) UpdateVisit(_ context.Context, v *Visit) error {
	stored, ok := m.visits[v.ID]
	if !ok {
		return fmt.Errorf("not found")
	}
	cp := copyVisit(v)
	cp.ClinicalOrders = stored.ClinicalOrders
	cp.Prescription = stored.Prescription
	m.visits[v.ID] = cp
	return nil
}

func (m *mockRepo) ListVisits(_ context.Context, status VisitStatus, limit, offset int) ([]*Visit, int, error) {
	var result []*Visit
	for _, v := range m.visits {
		if status == "" || v.Status == status {
			result = append(result, copyVisit(v))
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ReplaceVisitOrders(_ context.Context, visitID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error {
	v, ok := m.visits[visitID]
	if !ok {
		return fmt.Errorf("not found")
	}
	v.ClinicalOrders = append([]ClinicalOrder(nil), orders...)
	v.Prescription = append([]PrescriptionLine(nil), prescription...)
	return nil
}

func (m *mockRepo) CreateAdmission(_ context.Context, a *Admission) error {
	a.ID = uuid.New()
	m.admissions[a.ID] = copyAdmission(a)
	return nil
}

func (m *mockRepo) GetAdmission(_ context.Context, id uuid.UUID) (*Admission, error) {
	a, ok := m.admissions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return copyAdmission(a), nil
}

func (m *mockRepo) UpdateAdmission(_ context.Context, a *Admission) error {
	stored, ok := m.admissions[a.ID]
	if !ok {
		return fmt.Errorf("not found")
	}
	cp := copyAdmission(a)
	cp.ClinicalOrders = stored.ClinicalOrders
	cp.Prescription = stored.Prescription
	cp.NursingTasks = stored.NursingTasks
	cp.VitalSignRecords = stored.VitalSignRecords
	m.admissions[a.ID] = cp
	return nil
}

func (m *mockRepo) ListAdmissions(_ context.Context, status AdmissionStatus, limit, offset int) ([]*Admission, int, error) {
	var result []*Admission
	for _, a := range m.admissions {
		if status == "" || a.Status == status {
			result = append(result, copyAdmission(a))
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ReplaceAdmissionOrders(_ context.Context, admissionID uuid.UUID, orders []ClinicalOrder, prescription []PrescriptionLine) error {
	a, ok := m.admissions[admissionID]
	if !ok {
		return fmt.Errorf("not found")
	}
	a.ClinicalOrders = append([]ClinicalOrder(nil), orders...)
	a.Prescription = append([]PrescriptionLine(nil), prescription...)
	return nil
}

func (m *mockRepo) AddNursingTask(_ context.Context, t *NursingTask) error {
	t.ID = uuid.New()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetNursingTask(_ context.Context, id uuid.UUID) (*NursingTask, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) UpdateNursingTask(_ context.Context, t *NursingTask) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockRepo) AddVitalSignRecord(_ context.Context, r *VitalSignRecord) error {
	r.ID = uuid.New()
	cp := *r
	m.vitals[r.AdmissionID] = append(m.vitals[r.AdmissionID], &cp)
	return nil
}

func (m *mockRepo) ListVitalSignRecords(_ context.Context, admissionID uuid.UUID) ([]*VitalSignRecord, error) {
	return m.vitals[admissionID], nil
}

type mockPatients struct {
	patients map[uuid.UUID]*registry.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id uuid.UUID) (*registry.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

type mockServiceItems struct {
	items map[uuid.UUID]*catalog.ServiceItem
}

func (m *mockServiceItems) GetByID(_ context.Context, id uuid.UUID) (*catalog.ServiceItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return item, nil
}

type mockMedications struct {
	meds map[uuid.UUID]*catalog.Medication
}

func (m *mockMedications) GetByID(_ context.Context, id uuid.UUID) (*catalog.Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return med, nil
}

type mockLedger struct {
	entries []*ledger.Entry
}

func (m *mockLedger) Create(_ context.Context, e *ledger.Entry) error {
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return nil
}

type mockLabs struct {
	orders []*diagnostics.LabOrder
}

func (m *mockLabs) Create(_ context.Context, o *diagnostics.LabOrder) error {
	o.ID = uuid.New()
	m.orders = append(m.orders, o)
	return nil
}

type mockRadiology struct {
	exams []*diagnostics.RadiologyExam
}

func (m *mockRadiology) Create(_ context.Context, e *diagnostics.RadiologyExam) error {
	e.ID = uuid.New()
	m.exams = append(m.exams, e)
	return nil
}

type mockTx struct{}

func (mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// -- Fixture --

type fixture struct {
	svc       *Service
	repo      *mockRepo
	ledger    *mockLedger
	labs      *mockLabs
	radiology *mockRadiology

	patient *registry.Patient
	xray    *catalog.ServiceItem
	cbc     *catalog.ServiceItem
	para    *catalog.Medication
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newMockRepo(),
		ledger:    &mockLedger{},
		labs:      &mockLabs{},
		radiology: &mockRadiology{},
	}
	f.patient = &registry.Patient{ID: uuid.New(), MRN: "PT-0001", FullName: "Nguyễn Văn An"}
	f.xray = &catalog.ServiceItem{
		ID: uuid.New(), Name: "Chụp X-quang ngực", Category: "Chẩn đoán hình ảnh",
		Kind: catalog.KindImaging, Price: decimal.NewFromInt(120000), Active: true,
	}
	f.cbc = &catalog.ServiceItem{
		ID: uuid.New(), Name: "Công thức máu", Category: "Xét nghiệm",
		Kind: catalog.KindLab, Price: decimal.NewFromInt(50000), Active: true,
	}
	f.para = &catalog.Medication{
		ID: uuid.New(), Name: "Paracetamol 500mg", Cost: decimal.NewFromInt(2000), Stock: 100,
	}

	f.svc = NewService(
		f.repo,
		&mockPatients{patients: map[uuid.UUID]*registry.Patient{f.patient.ID: f.patient}},
		&mockServiceItems{items: map[uuid.UUID]*catalog.ServiceItem{f.xray.ID: f.xray, f.cbc.ID: f.cbc}},
		&mockMedications{meds: map[uuid.UUID]*catalog.Medication{f.para.ID: f.para}},
		f.ledger,
		f.labs,
		f.radiology,
		mockTx{},
	)
	return f
}

func (f *fixture) newVisit(t *testing.T, status VisitStatus) *Visit {
	t.Helper()
	v := &Visit{PatientID: f.patient.ID, Status: status}
	if err := f.svc.CreateVisit(context.Background(), v); err != nil {
		t.Fatalf("create visit: %v", err)
	}
	return v
}

func (f *fixture) newAdmission(t *testing.T, status AdmissionStatus) *Admission {
	t.Helper()
	a := &Admission{PatientID: f.patient.ID, Status: status}
	if err := f.svc.CreateAdmission(context.Background(), a); err != nil {
		t.Fatalf("create admission: %v", err)
	}
	return a
}

// -- Order capture --

func TestSaveVisitOrders_XRayScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitInConsultation)

	result, err := f.svc.SaveVisitOrders(ctx, v.ID, []OrderLineInput{{ServiceID: f.xray.ID}}, nil, "bs.tran")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.NewLedger) != 1 {
		t.Fatalf("expected 1 new ledger entry, got %d", len(result.NewLedger))
	}
	if result.NewLedger[0].Type != ledger.EntryTypeIncome {
		t.Errorf("expected type Thu, got %s", result.NewLedger[0].Type)
	}
	if !result.NewLedger[0].Amount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("expected amount 120000, got %s", result.NewLedger[0].Amount)
	}
	if len(result.NewRadiology) != 1 {
		t.Fatalf("expected 1 new radiology exam, got %d", len(result.NewRadiology))
	}
	if result.NewRadiology[0].Status != diagnostics.StatusOrdered {
		t.Errorf("expected seeded status ordered, got %s", result.NewRadiology[0].Status)
	}
	if result.SuggestedStatus == nil || *result.SuggestedStatus != VisitAwaitingResults {
		t.Error("expected suggested status awaiting-results")
	}

	// The server never applies the suggestion.
	stored, _ := f.svc.GetVisit(ctx, v.ID)
	if stored.Status != VisitInConsultation {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}

	// Re-saving the same orders emits nothing new.
	result, err = f.svc.SaveVisitOrders(ctx, v.ID, []OrderLineInput{{ServiceID: f.xray.ID}}, nil, "bs.tran")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.NewLedger) != 0 || len(result.NewRadiology) != 0 {
		t.Errorf("expected empty fan-out on re-save, got %d ledger / %d radiology",
			len(result.NewLedger), len(result.NewRadiology))
	}
	if result.SuggestedStatus != nil {
		t.Error("expected no suggestion without new lab/imaging lines")
	}
	if len(f.ledger.entries) != 1 || len(f.radiology.exams) != 1 {
		t.Errorf("expected exactly one persisted entry of each kind, got %d/%d",
			len(f.ledger.entries), len(f.radiology.exams))
	}
}

func TestSaveVisitOrders_ExactlyOnceFanOut(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitInConsultation)

	orders := []OrderLineInput{{ServiceID: f.xray.ID}, {ServiceID: f.cbc.ID}}
	rx := []PrescriptionLineInput{{MedicationID: f.para.ID, Quantity: 10, Dosage: "1v x 3/ngày"}}

	result, err := f.svc.SaveVisitOrders(ctx, v.ID, orders, rx, "bs.tran")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Three new lines: three ledger entries, one lab, one radiology.
	if len(result.NewLedger) != 3 {
		t.Errorf("expected 3 ledger entries, got %d", len(result.NewLedger))
	}
	if len(result.NewLabOrders) != 1 {
		t.Errorf("expected 1 lab order, got %d", len(result.NewLabOrders))
	}
	if len(result.NewRadiology) != 1 {
		t.Errorf("expected 1 radiology exam, got %d", len(result.NewRadiology))
	}

	// Medication amount is unit cost times quantity.
	var medAmount decimal.Decimal
	for _, e := range result.NewLedger {
		if e.Amount.Equal(decimal.NewFromInt(20000)) {
			medAmount = e.Amount
		}
	}
	if medAmount.IsZero() {
		t.Error("expected a 20000 entry for 10 x 2000 medication")
	}
}

func TestSaveVisitOrders_DuplicateLineRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitInConsultation)

	_, err := f.svc.SaveVisitOrders(ctx, v.ID,
		[]OrderLineInput{{ServiceID: f.xray.ID}, {ServiceID: f.xray.ID}}, nil, "bs.tran")
	if !isValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(f.ledger.entries) != 0 {
		t.Error("expected nothing persisted on rejection")
	}
}

func TestSaveVisitOrders_RemoveThenReAddBillsAgain(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitInConsultation)

	if _, err := f.svc.SaveVisitOrders(ctx, v.ID, []OrderLineInput{{ServiceID: f.cbc.ID}}, nil, "bs.tran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.SaveVisitOrders(ctx, v.ID, nil, nil, "bs.tran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := f.svc.SaveVisitOrders(ctx, v.ID, []OrderLineInput{{ServiceID: f.cbc.ID}}, nil, "bs.tran")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.NewLedger) != 1 || len(result.NewLabOrders) != 1 {
		t.Errorf("expected re-added line to bill again, got %d ledger / %d lab",
			len(result.NewLedger), len(result.NewLabOrders))
	}
	if len(f.ledger.entries) != 2 {
		t.Errorf("expected 2 total ledger entries across the session, got %d", len(f.ledger.entries))
	}
}

func TestSaveAdmissionOrders_LockedAfterDischarge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionAwaitingDischarge)

	if _, err := f.svc.SignDischarge(ctx, a.ID, "Ổn định, cho ra viện.", ConfirmFlag(true), "bs.tran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.SaveAdmissionOrders(ctx, a.ID, []OrderLineInput{{ServiceID: f.cbc.ID}}, nil, "bs.tran")
	if !isPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}

// -- Status machine --

func TestUpdateVisitStatus_TerminalGuard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitAwaitingResults)

	if _, err := f.svc.UpdateVisitStatus(ctx, v.ID, VisitCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.UpdateVisitStatus(ctx, v.ID, VisitWaiting)
	if !isPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	stored, _ := f.svc.GetVisit(ctx, v.ID)
	if stored.Status != VisitCompleted {
		t.Errorf("expected status to stay completed, got %s", stored.Status)
	}
}

func TestUpdateAdmissionStatus_DischargeUnreachableDirectly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	_, err := f.svc.UpdateAdmissionStatus(ctx, a.ID, AdmissionDischarged)
	if !isPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	stored, _ := f.svc.GetAdmission(ctx, a.ID)
	if stored.Status != AdmissionUnderTreatment {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}

	if _, err := f.svc.UpdateAdmissionStatus(ctx, a.ID, AdmissionAwaitingDischarge); err != nil {
		t.Errorf("expected free move among non-terminal states: %v", err)
	}
}

// -- Discharge sign-off --

func TestSignDischarge_FinalBillSumsClinicalOrdersOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	orders := []OrderLineInput{{ServiceID: f.xray.ID}, {ServiceID: f.cbc.ID}}
	rx := []PrescriptionLineInput{{MedicationID: f.para.ID, Quantity: 10}}
	if _, err := f.svc.SaveAdmissionOrders(ctx, a.ID, orders, rx, "bs.tran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	perLineEntries := len(f.ledger.entries)

	got, err := f.svc.SignDischarge(ctx, a.ID, "Ổn định, cho ra viện.", ConfirmFlag(true), "bs.tran")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != AdmissionDischarged {
		t.Errorf("expected status discharged, got %s", got.Status)
	}
	if !got.IsDischargeSummarySigned {
		t.Error("expected summary to be signed")
	}
	if got.DischargeDate == nil {
		t.Error("expected discharge date to be set")
	}
	if len(f.ledger.entries) != perLineEntries+1 {
		t.Fatalf("expected exactly one final bill entry, got %d new", len(f.ledger.entries)-perLineEntries)
	}
	// 120000 + 50000; the 10 x 2000 prescription is not in the final bill.
	final := f.ledger.entries[len(f.ledger.entries)-1]
	if !final.Amount.Equal(decimal.NewFromInt(170000)) {
		t.Errorf("expected final bill 170000, got %s", final.Amount)
	}
}

func TestSignDischarge_EmptySummaryRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	_, err := f.svc.SignDischarge(ctx, a.ID, "   ", ConfirmFlag(true), "bs.tran")
	if !isValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	stored, _ := f.svc.GetAdmission(ctx, a.ID)
	if stored.Status != AdmissionUnderTreatment || stored.IsDischargeSummarySigned {
		t.Error("expected record unchanged after rejection")
	}
	if len(f.ledger.entries) != 0 {
		t.Error("expected no ledger entry after rejection")
	}
}

func TestSignDischarge_UnconfirmedIsNoOp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionAwaitingDischarge)

	_, err := f.svc.SignDischarge(ctx, a.ID, "Ra viện.", ConfirmFlag(false), "bs.tran")
	if !isPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	stored, _ := f.svc.GetAdmission(ctx, a.ID)
	if stored.Status != AdmissionAwaitingDischarge || stored.DischargeSummary != nil {
		t.Error("expected cancellation to change nothing")
	}
	if len(f.ledger.entries) != 0 {
		t.Error("expected no ledger entry on cancellation")
	}
}

func TestSignDischarge_Irreversible(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	if _, err := f.svc.SignDischarge(ctx, a.ID, "Ra viện.", ConfirmFlag(true), "bs.tran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.SignDischarge(ctx, a.ID, "Khác.", ConfirmFlag(true), "bs.tran")
	if !isPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	stored, _ := f.svc.GetAdmission(ctx, a.ID)
	if !stored.IsDischargeSummarySigned {
		t.Error("signed flag must never be unset")
	}
	if *stored.DischargeSummary != "Ra viện." {
		t.Errorf("expected original summary preserved, got %q", *stored.DischargeSummary)
	}
}

// -- Note and diagnosis locking --

func TestSignVisitNote_LockIrreversible(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitInConsultation)

	if _, err := f.svc.SignVisitNote(ctx, v.ID, "Khám lâm sàng bình thường."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.SignVisitNote(ctx, v.ID, "đè lên")
	if !isPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}

	// A later details save must preserve the signed text.
	newNote := "sửa sau khi ký"
	if _, err := f.svc.UpdateVisitDetails(ctx, v.ID, nil, nil, nil, &newNote); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.svc.GetVisit(ctx, v.ID)
	if stored.ClinicalNote == nil || *stored.ClinicalNote != "Khám lâm sàng bình thường." {
		t.Error("expected signed note text to be immutable")
	}
	if !stored.IsNoteSigned {
		t.Error("signed flag must never be unset")
	}
}

func TestSignVisitDiagnosis_EmptyTextRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.newVisit(t, VisitInConsultation)

	_, err := f.svc.SignVisitDiagnosis(ctx, v.ID, "  ")
	if !isValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// -- Nursing tasks and vitals --

func TestToggleNursingTask_IdempotentPair(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	task, err := f.svc.AddNursingTask(ctx, a.ID, "Đo huyết áp 6h", time.Now(), "dd.hoa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done, err := f.svc.ToggleNursingTask(ctx, a.ID, task.ID, "dd.hoa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done.IsCompleted || done.CompletedBy == nil || *done.CompletedBy != "dd.hoa" || done.CompletedAt == nil {
		t.Error("expected completion to stamp who and when")
	}

	undone, err := f.svc.ToggleNursingTask(ctx, a.ID, task.ID, "dd.hoa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if undone.IsCompleted || undone.CompletedBy != nil || undone.CompletedAt != nil {
		t.Error("expected second toggle to restore the original state")
	}
}

func TestToggleNursingTask_WrongAdmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)
	other := f.newAdmission(t, AdmissionAdmitted)

	task, err := f.svc.AddNursingTask(ctx, a.ID, "Thay dịch truyền", time.Now(), "dd.hoa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.ToggleNursingTask(ctx, other.ID, task.ID, "dd.hoa"); err == nil {
		t.Error("expected toggle through the wrong admission to be rejected")
	}
}

func TestRecordVitalSigns_AllFieldsRequired(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	cases := []struct {
		name string
		rec  VitalSignRecord
	}{
		{"missing temperature", VitalSignRecord{BloodPressure: "120/80", HeartRate: 72, SpO2: 98}},
		{"missing blood pressure", VitalSignRecord{Temperature: 36.8, HeartRate: 72, SpO2: 98}},
		{"missing heart rate", VitalSignRecord{Temperature: 36.8, BloodPressure: "120/80", SpO2: 98}},
		{"missing spo2", VitalSignRecord{Temperature: 36.8, BloodPressure: "120/80", HeartRate: 72}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.rec
			err := f.svc.RecordVitalSigns(ctx, a.ID, &rec, "dd.hoa")
			if !isValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	records, _ := f.svc.ListVitalSigns(ctx, a.ID)
	if len(records) != 0 {
		t.Errorf("expected no records after rejected submissions, got %d", len(records))
	}
}

func TestRecordVitalSigns_AppendOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.newAdmission(t, AdmissionUnderTreatment)

	first := VitalSignRecord{Temperature: 36.8, BloodPressure: "120/80", HeartRate: 72, SpO2: 98}
	if err := f.svc.RecordVitalSigns(ctx, a.ID, &first, "dd.hoa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := VitalSignRecord{Temperature: 37.5, BloodPressure: "130/85", HeartRate: 80, SpO2: 96}
	if err := f.svc.RecordVitalSigns(ctx, a.ID, &second, "dd.hoa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, _ := f.svc.ListVitalSigns(ctx, a.ID)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.ID == first.ID && r.Temperature != 36.8 {
			t.Error("expected earlier snapshot to be unchanged")
		}
	}
}

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func isPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
