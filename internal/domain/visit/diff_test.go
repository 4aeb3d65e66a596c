package visit

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visitflow/visitflow/internal/domain/catalog"
	"github.com/visitflow/visitflow/internal/domain/ledger"
)

func orderLine(serviceID uuid.UUID, name string, kind catalog.Kind, price int64) ClinicalOrder {
	return ClinicalOrder{
		ID:          uuid.New(),
		ServiceID:   serviceID,
		ServiceName: name,
		Kind:        kind,
		Price:       decimal.NewFromInt(price),
	}
}

func rxLine(medID uuid.UUID, name string, cost int64, qty int) PrescriptionLine {
	return PrescriptionLine{
		ID:             uuid.New(),
		MedicationID:   medID,
		MedicationName: name,
		Cost:           decimal.NewFromInt(cost),
		Quantity:       qty,
	}
}

func testRef() RecordRef {
	visitID := uuid.New()
	return RecordRef{
		PatientID:   uuid.New(),
		PatientName: "Nguyễn Văn An",
		VisitID:     &visitID,
	}
}

func TestComputeFanOut_XRayScenario(t *testing.T) {
	// Empty record gains one imaging order priced 120000: expect one
	// income entry and one radiology exam in the ordered state.
	xray := orderLine(uuid.New(), "Chụp X-quang ngực", catalog.KindImaging, 120000)

	prev := OrderSnapshot{}
	updated := OrderSnapshot{ClinicalOrders: []ClinicalOrder{xray}}

	out := ComputeFanOut(prev, updated, testRef(), time.Now())

	if len(out.LedgerEntries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(out.LedgerEntries))
	}
	entry := out.LedgerEntries[0]
	if entry.Type != ledger.EntryTypeIncome {
		t.Errorf("expected type %s, got %s", ledger.EntryTypeIncome, entry.Type)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("expected amount 120000, got %s", entry.Amount)
	}
	if len(out.RadiologyExams) != 1 {
		t.Fatalf("expected 1 radiology exam, got %d", len(out.RadiologyExams))
	}
	if out.RadiologyExams[0].Status != "ordered" {
		t.Errorf("expected seeded status ordered, got %s", out.RadiologyExams[0].Status)
	}
	if out.RadiologyExams[0].Report != nil {
		t.Error("expected empty report on a new exam")
	}
	if len(out.LabOrders) != 0 {
		t.Errorf("expected no lab orders, got %d", len(out.LabOrders))
	}

	// Saving the same snapshot again emits nothing.
	again := ComputeFanOut(updated, updated, testRef(), time.Now())
	if !again.Empty() {
		t.Errorf("expected empty fan-out on unchanged re-save, got %d/%d/%d",
			len(again.LedgerEntries), len(again.LabOrders), len(again.RadiologyExams))
	}
}

func TestComputeFanOut_ExactlyOnce(t *testing.T) {
	// Four new lines, of which one lab and one imaging: four ledger
	// entries, one lab order, one radiology exam.
	lab := orderLine(uuid.New(), "Công thức máu", catalog.KindLab, 50000)
	imaging := orderLine(uuid.New(), "Siêu âm bụng", catalog.KindImaging, 200000)
	procedure := orderLine(uuid.New(), "Thay băng", catalog.KindProcedure, 30000)
	med := rxLine(uuid.New(), "Paracetamol 500mg", 2000, 10)

	prev := OrderSnapshot{}
	updated := OrderSnapshot{
		ClinicalOrders: []ClinicalOrder{lab, imaging, procedure},
		Prescription:   []PrescriptionLine{med},
	}

	out := ComputeFanOut(prev, updated, testRef(), time.Now())

	if len(out.LedgerEntries) != 4 {
		t.Fatalf("expected 4 ledger entries, got %d", len(out.LedgerEntries))
	}
	if len(out.LabOrders) != 1 {
		t.Errorf("expected 1 lab order, got %d", len(out.LabOrders))
	}
	if len(out.RadiologyExams) != 1 {
		t.Errorf("expected 1 radiology exam, got %d", len(out.RadiologyExams))
	}
}

func TestComputeFanOut_MedicationAmountIsCostTimesQuantity(t *testing.T) {
	med := rxLine(uuid.New(), "Amoxicillin 500mg", 3500, 20)

	out := ComputeFanOut(OrderSnapshot{}, OrderSnapshot{Prescription: []PrescriptionLine{med}}, testRef(), time.Now())

	if len(out.LedgerEntries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(out.LedgerEntries))
	}
	if !out.LedgerEntries[0].Amount.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("expected amount 70000, got %s", out.LedgerEntries[0].Amount)
	}
}

func TestComputeFanOut_OnlyNewLinesBill(t *testing.T) {
	existing := orderLine(uuid.New(), "Khám nội tổng quát", catalog.KindOther, 100000)
	added := orderLine(uuid.New(), "Xét nghiệm đường huyết", catalog.KindLab, 40000)

	prev := OrderSnapshot{ClinicalOrders: []ClinicalOrder{existing}}
	updated := OrderSnapshot{ClinicalOrders: []ClinicalOrder{existing, added}}

	out := ComputeFanOut(prev, updated, testRef(), time.Now())

	if len(out.LedgerEntries) != 1 {
		t.Fatalf("expected 1 ledger entry for the added line only, got %d", len(out.LedgerEntries))
	}
	if !out.LedgerEntries[0].Amount.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("expected the new line's amount, got %s", out.LedgerEntries[0].Amount)
	}
	if len(out.LabOrders) != 1 {
		t.Errorf("expected 1 lab order, got %d", len(out.LabOrders))
	}
}

func TestComputeFanOut_RemovedThenReAddedBillsAgain(t *testing.T) {
	// The diff runs against the last persisted snapshot only. A line
	// removed in one save and re-added in a later save is new again.
	service := orderLine(uuid.New(), "Siêu âm tim", catalog.KindImaging, 250000)

	withLine := OrderSnapshot{ClinicalOrders: []ClinicalOrder{service}}
	without := OrderSnapshot{}

	if out := ComputeFanOut(withLine, without, testRef(), time.Now()); !out.Empty() {
		t.Error("expected removal to emit nothing")
	}

	out := ComputeFanOut(without, withLine, testRef(), time.Now())
	if len(out.LedgerEntries) != 1 || len(out.RadiologyExams) != 1 {
		t.Errorf("expected re-added line to bill again, got %d ledger / %d radiology",
			len(out.LedgerEntries), len(out.RadiologyExams))
	}
}

func TestComputeFanOut_DescriptionsNamePatientAndItem(t *testing.T) {
	service := orderLine(uuid.New(), "Chụp X-quang ngực", catalog.KindImaging, 120000)
	ref := testRef()

	out := ComputeFanOut(OrderSnapshot{}, OrderSnapshot{ClinicalOrders: []ClinicalOrder{service}}, ref, time.Now())

	desc := out.LedgerEntries[0].Description
	if !strings.Contains(desc, "Chụp X-quang ngực") || !strings.Contains(desc, ref.PatientName) {
		t.Errorf("expected description to name item and patient, got %q", desc)
	}
}
