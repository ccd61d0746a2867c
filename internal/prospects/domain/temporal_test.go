package domain

import (
	"testing"
	"time"
)

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestIsHot(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		createdAt time.Time
		now       time.Time
		want      bool
	}{
		{
			name:      "appointment scheduled is always hot",
			status:    StatusAppointmentScheduled,
			createdAt: baseTime.Add(-90 * 24 * time.Hour),
			now:       baseTime,
			want:      true,
		},
		{
			name:      "contacted inside the window is hot",
			status:    StatusContacted,
			createdAt: baseTime.Add(-2 * 24 * time.Hour),
			now:       baseTime,
			want:      true,
		},
		{
			name:      "contacted exactly at the window boundary is hot",
			status:    StatusContacted,
			createdAt: baseTime.Add(-HotContactWindow),
			now:       baseTime,
			want:      true,
		},
		{
			name:      "contacted one second past the window is not hot",
			status:    StatusContacted,
			createdAt: baseTime.Add(-HotContactWindow - time.Second),
			now:       baseTime,
			want:      false,
		},
		{
			name:      "new inside the window is not hot",
			status:    StatusNew,
			createdAt: baseTime.Add(-time.Hour),
			now:       baseTime,
			want:      false,
		},
		{
			name:      "qualified is not hot",
			status:    StatusQualified,
			createdAt: baseTime.Add(-time.Hour),
			now:       baseTime,
			want:      false,
		},
		{
			name:      "converted is not hot",
			status:    StatusConverted,
			createdAt: baseTime.Add(-time.Hour),
			now:       baseTime,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHot(tt.status, tt.createdAt, tt.now); got != tt.want {
				t.Errorf("IsHot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStale(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		updatedAt time.Time
		now       time.Time
		want      bool
	}{
		{
			name:      "new past the threshold is stale",
			status:    StatusNew,
			updatedAt: baseTime.Add(-8 * 24 * time.Hour),
			now:       baseTime,
			want:      true,
		},
		{
			name:      "new exactly at the threshold is not stale",
			status:    StatusNew,
			updatedAt: baseTime.Add(-StaleNewThreshold),
			now:       baseTime,
			want:      false,
		},
		{
			name:      "new one second past the threshold is stale",
			status:    StatusNew,
			updatedAt: baseTime.Add(-StaleNewThreshold - time.Second),
			now:       baseTime,
			want:      true,
		},
		{
			name:      "new inside the threshold is not stale",
			status:    StatusNew,
			updatedAt: baseTime.Add(-2 * 24 * time.Hour),
			now:       baseTime,
			want:      false,
		},
		{
			name:      "contacted past the threshold is not stale",
			status:    StatusContacted,
			updatedAt: baseTime.Add(-30 * 24 * time.Hour),
			now:       baseTime,
			want:      false,
		},
		{
			name:      "not interested past the threshold is not stale",
			status:    StatusNotInterested,
			updatedAt: baseTime.Add(-30 * 24 * time.Hour),
			now:       baseTime,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStale(tt.status, tt.updatedAt, tt.now); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

// A hot contacted prospect cools off as the clock advances even though nothing
// about the row changes.
func TestHotDecaysWithTime(t *testing.T) {
	createdAt := baseTime

	if !IsHot(StatusContacted, createdAt, baseTime.Add(24*time.Hour)) {
		t.Fatal("expected prospect to be hot one day after creation")
	}
	if IsHot(StatusContacted, createdAt, baseTime.Add(5*24*time.Hour)) {
		t.Fatal("expected prospect to have cooled off five days after creation")
	}
}

func TestPriorityRank(t *testing.T) {
	for i, s := range AllStatuses {
		if got := PriorityRank(s); got != i {
			t.Errorf("PriorityRank(%s) = %d, want %d", s, got, i)
		}
	}
	if got := PriorityRank(Status("bogus")); got != len(AllStatuses) {
		t.Errorf("PriorityRank(bogus) = %d, want %d", got, len(AllStatuses))
	}
}
