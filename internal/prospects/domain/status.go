// Package domain holds the prospect aggregate and the pure business rules of
// the lead lifecycle: status/source enumerations, structural validation, and
// the time-based hot/stale classification policy.
package domain

// Status is the funnel position of a prospect. Transitions are unrestricted
// in direction; no status is terminal at the entity level.
type Status string

const (
	StatusNew                  Status = "new"
	StatusContacted            Status = "contacted"
	StatusAppointmentScheduled Status = "appointment_scheduled"
	StatusQualified            Status = "qualified"
	StatusConverted            Status = "converted"
	StatusNotInterested        Status = "not_interested"
)

// AllStatuses lists every status in funnel order. The order doubles as the
// priority rank used by "priority" sorting, so the repository derives its SQL
// CASE expression from this slice instead of repeating the order.
var AllStatuses = []Status{
	StatusNew,
	StatusContacted,
	StatusAppointmentScheduled,
	StatusQualified,
	StatusConverted,
	StatusNotInterested,
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s Status) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PriorityRank returns the sort rank of a status for priority ordering
// (lower sorts first). Unknown statuses sort last.
func PriorityRank(s Status) int {
	for i, known := range AllStatuses {
		if s == known {
			return i
		}
	}
	return len(AllStatuses)
}

// Source identifies the acquisition channel of a prospect.
type Source string

const (
	SourceMercadoLibre Source = "mercadolibre"
	SourceFacebook     Source = "facebook"
	SourceInstagram    Source = "instagram"
	SourceWhatsApp     Source = "whatsapp"
	SourceWebsite      Source = "website"
	SourceReferral     Source = "referral"
	SourceOther        Source = "other"
)

// AllSources lists every acquisition channel.
var AllSources = []Source{
	SourceMercadoLibre,
	SourceFacebook,
	SourceInstagram,
	SourceWhatsApp,
	SourceWebsite,
	SourceReferral,
	SourceOther,
}

// IsValidSource reports whether s is a known source.
func IsValidSource(s Source) bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}
