package domain

import "time"

// Classification thresholds. These are the single source of truth: the entity
// methods below and the repository's SQL cutoffs both derive from them, so the
// in-memory rules and the query predicates cannot drift.
const (
	// HotContactWindow is how long a contacted prospect stays hot after creation.
	HotContactWindow = 3 * 24 * time.Hour
	// StaleNewThreshold is how long an untouched new prospect may sit before
	// it counts as stale.
	StaleNewThreshold = 7 * 24 * time.Hour
	// RecentWindow bounds the "recent" bucket in funnel stats.
	RecentWindow = 30 * 24 * time.Hour
)

// IsHot reports whether a prospect warrants immediate attention: it has an
// appointment scheduled, or it was contacted and is still inside the contact
// window. Hot is never stored; it is recomputed from "now" on every read.
func IsHot(status Status, createdAt, now time.Time) bool {
	if status == StatusAppointmentScheduled {
		return true
	}
	return status == StatusContacted && now.Sub(createdAt) <= HotContactWindow
}

// IsStale reports whether a new prospect has sat untouched past the staleness
// threshold. Like IsHot, this is a read-time derived property.
func IsStale(status Status, updatedAt, now time.Time) bool {
	return status == StatusNew && now.Sub(updatedAt) > StaleNewThreshold
}
