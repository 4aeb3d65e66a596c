package visit

// VisitStatus is the outpatient workflow stage. Staff move visits
// freely between non-terminal stages; completed is terminal.
type VisitStatus string

const (
	VisitWaiting         VisitStatus = "waiting"
	VisitInConsultation  VisitStatus = "in-consultation"
	VisitAwaitingResults VisitStatus = "awaiting-results"
	VisitCompleted       VisitStatus = "completed"
)

func (s VisitStatus) Valid() bool {
	switch s {
	case VisitWaiting, VisitInConsultation, VisitAwaitingResults, VisitCompleted:
		return true
	}
	return false
}

func (s VisitStatus) Terminal() bool { return s == VisitCompleted }

// CanTransitionTo permits any move between valid stages, forward or
// backward, except away from the terminal stage.
func (s VisitStatus) CanTransitionTo(next VisitStatus) bool {
	return !s.Terminal() && next.Valid() && next != s
}

// AdmissionStatus is the inpatient workflow stage. Discharged is
// terminal and reachable only through the discharge sign-off, never by
// a direct status edit.
type AdmissionStatus string

const (
	AdmissionAdmitted          AdmissionStatus = "admitted"
	AdmissionUnderTreatment    AdmissionStatus = "under-treatment"
	AdmissionAwaitingDischarge AdmissionStatus = "awaiting-discharge"
	AdmissionDischarged        AdmissionStatus = "discharged"
)

func (s AdmissionStatus) Valid() bool {
	switch s {
	case AdmissionAdmitted, AdmissionUnderTreatment, AdmissionAwaitingDischarge, AdmissionDischarged:
		return true
	}
	return false
}

func (s AdmissionStatus) Terminal() bool { return s == AdmissionDischarged }

// CanTransitionTo permits free movement among the non-terminal stages.
// Moving to discharged always fails here; that transition belongs to
// the discharge sign-off alone.
func (s AdmissionStatus) CanTransitionTo(next AdmissionStatus) bool {
	if s.Terminal() || next == AdmissionDischarged {
		return false
	}
	return next.Valid() && next != s
}
