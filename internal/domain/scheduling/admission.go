// Package scheduling decides whether a new appointment may join the schedule.
package scheduling

import "hospital-scheduler/internal/domain/entity"

// Decision is the outcome of an admission check
type Decision int

const (
	Admit Decision = iota
	RejectInvalidRange
	RejectOverlap
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case RejectInvalidRange:
		return "reject_invalid_range"
	case RejectOverlap:
		return "reject_overlap"
	default:
		return "unknown"
	}
}

// CanAdmit checks the candidate's own range first, then rejects it if it
// overlaps any of the existing appointments. existing is a snapshot supplied
// by the caller; CanAdmit neither reads nor writes storage.
func CanAdmit(candidate *entity.Appointment, existing []entity.Appointment) Decision {
	if candidate.IsDateRangeInvalid() {
		return RejectInvalidRange
	}

	for i := range existing {
		if candidate.Overlaps(&existing[i]) {
			return RejectOverlap
		}
	}

	return Admit
}
