package visit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visitflow/visitflow/internal/domain/catalog"
	"github.com/visitflow/visitflow/internal/domain/diagnostics"
	"github.com/visitflow/visitflow/internal/domain/ledger"
)

// RecordRef ties derived rows back to the record that produced them.
// Exactly one of VisitID and AdmissionID is set.
type RecordRef struct {
	PatientID   uuid.UUID
	PatientName string
	VisitID     *uuid.UUID
	AdmissionID *uuid.UUID
}

// FanOut is the set of derived records one save produces.
type FanOut struct {
	LedgerEntries  []*ledger.Entry
	LabOrders      []*diagnostics.LabOrder
	RadiologyExams []*diagnostics.RadiologyExam
}

func (f *FanOut) Empty() bool {
	return len(f.LedgerEntries) == 0 && len(f.LabOrders) == 0 && len(f.RadiologyExams) == 0
}

// ComputeFanOut diffs the updated snapshot against the last persisted
// one and emits derived records for newly added lines only. Membership
// is by service and medication id, so re-saving an unchanged record
// emits nothing, while a line removed in one save and re-added in a
// later save is billed again as new.
//
// Each new service line yields one income entry priced at the line
// price; each new prescription line yields one income entry of unit
// cost times quantity. New lab and imaging lines additionally yield a
// lab order or radiology exam seeded in the ordered state with empty
// results.
//
// The function is pure: it never touches storage and emits rows without
// ids, which the repositories assign on insert.
func ComputeFanOut(prev, updated OrderSnapshot, ref RecordRef, now time.Time) FanOut {
	prevServices := make(map[uuid.UUID]bool, len(prev.ClinicalOrders))
	for _, o := range prev.ClinicalOrders {
		prevServices[o.ServiceID] = true
	}
	prevMeds := make(map[uuid.UUID]bool, len(prev.Prescription))
	for _, p := range prev.Prescription {
		prevMeds[p.MedicationID] = true
	}

	var out FanOut

	for i := range updated.ClinicalOrders {
		o := &updated.ClinicalOrders[i]
		if prevServices[o.ServiceID] {
			continue
		}
		orderID := o.ID
		out.LedgerEntries = append(out.LedgerEntries, &ledger.Entry{
			Type:        ledger.EntryTypeIncome,
			Amount:      o.Price,
			Description: fmt.Sprintf("Thu tiền dịch vụ %s - BN %s", o.ServiceName, ref.PatientName),
			PatientID:   &ref.PatientID,
			VisitID:     ref.VisitID,
			AdmissionID: ref.AdmissionID,
			OrderID:     &orderID,
			CreatedAt:   now,
		})

		switch o.Kind {
		case catalog.KindLab:
			out.LabOrders = append(out.LabOrders, &diagnostics.LabOrder{
				PatientID:     ref.PatientID,
				PatientName:   ref.PatientName,
				VisitID:       ref.VisitID,
				AdmissionID:   ref.AdmissionID,
				OrderID:       o.ID,
				ServiceItemID: o.ServiceID,
				TestName:      o.ServiceName,
				Status:        diagnostics.StatusOrdered,
			})
		case catalog.KindImaging:
			out.RadiologyExams = append(out.RadiologyExams, &diagnostics.RadiologyExam{
				PatientID:     ref.PatientID,
				PatientName:   ref.PatientName,
				VisitID:       ref.VisitID,
				AdmissionID:   ref.AdmissionID,
				OrderID:       o.ID,
				ServiceItemID: o.ServiceID,
				ExamName:      o.ServiceName,
				Status:        diagnostics.StatusOrdered,
			})
		}
	}

	for i := range updated.Prescription {
		p := &updated.Prescription[i]
		if prevMeds[p.MedicationID] {
			continue
		}
		lineID := p.ID
		amount := p.Cost.Mul(decimal.NewFromInt(int64(p.Quantity)))
		out.LedgerEntries = append(out.LedgerEntries, &ledger.Entry{
			Type:        ledger.EntryTypeIncome,
			Amount:      amount,
			Description: fmt.Sprintf("Thu tiền thuốc %s (x%d) - BN %s", p.MedicationName, p.Quantity, ref.PatientName),
			PatientID:   &ref.PatientID,
			VisitID:     ref.VisitID,
			AdmissionID: ref.AdmissionID,
			OrderID:     &lineID,
			CreatedAt:   now,
		})
	}

	return out
}
