package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/cache"
	"autoplaza_backend/internal/prospects/domain"
	"autoplaza_backend/internal/prospects/transport"
	"autoplaza_backend/platform/clock"
)

func newQueryFixture(t *testing.T) (*fakeRepo, *clock.Fixed, *QueryService) {
	t.Helper()
	repo := newFakeRepo()
	clk := clock.NewFixed(testNow)
	stats := cache.NewStatsCache(repo, nil, 0, testLogger())
	return repo, clk, NewQueryService(repo, stats, clk)
}

func seedProspect(t *testing.T, repo *fakeRepo, status domain.Status, createdAt, updatedAt time.Time) domain.Prospect {
	t.Helper()
	p := domain.Prospect{
		ID:        uuid.New(),
		Name:      "Query Fixture",
		Phone:     "+5255" + uuid.New().String()[:8],
		Source:    domain.SourceWebsite,
		Status:    status,
		CreatedBy: uuid.New(),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if err := repo.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return p
}

func TestListClampsPagination(t *testing.T) {
	_, _, svc := newQueryFixture(t)

	resp, err := svc.List(context.Background(), transport.ListProspectsRequest{Page: 0, PageSize: 9999})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Page != 1 {
		t.Errorf("page = %d, want clamped to 1", resp.Page)
	}
	if resp.PageSize != maxPageSize {
		t.Errorf("pageSize = %d, want clamped to %d", resp.PageSize, maxPageSize)
	}
}

func TestListHotAndStale(t *testing.T) {
	repo, _, svc := newQueryFixture(t)

	hot := seedProspect(t, repo, domain.StatusContacted, testNow.Add(-24*time.Hour), testNow.Add(-24*time.Hour))
	stale := seedProspect(t, repo, domain.StatusNew, testNow.Add(-10*24*time.Hour), testNow.Add(-10*24*time.Hour))
	seedProspect(t, repo, domain.StatusQualified, testNow.Add(-24*time.Hour), testNow.Add(-24*time.Hour))

	hotList, err := svc.ListHot(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListHot() error = %v", err)
	}
	if len(hotList) != 1 || hotList[0].ID != hot.ID {
		t.Errorf("hot list = %v, want only the contacted prospect", hotList)
	}
	if !hotList[0].IsHot {
		t.Error("hot row must carry isHot = true")
	}

	staleList, err := svc.ListStale(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListStale() error = %v", err)
	}
	if len(staleList) != 1 || staleList[0].ID != stale.ID {
		t.Errorf("stale list = %v, want only the untouched new prospect", staleList)
	}
}

func TestDashboard(t *testing.T) {
	repo, _, svc := newQueryFixture(t)

	seedProspect(t, repo, domain.StatusContacted, testNow.Add(-24*time.Hour), testNow.Add(-24*time.Hour))
	seedProspect(t, repo, domain.StatusNew, testNow.Add(-10*24*time.Hour), testNow.Add(-10*24*time.Hour))
	withVisit := seedProspect(t, repo, domain.StatusAppointmentScheduled, testNow.Add(-48*time.Hour), testNow.Add(-48*time.Hour))
	visit := testNow.Add(24 * time.Hour)
	withVisit.AppointmentDate = &visit
	if err := repo.Update(context.Background(), &withVisit); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	board, err := svc.Dashboard(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if board.Stats.Total != 3 {
		t.Errorf("stats.total = %d, want 3", board.Stats.Total)
	}
	// Hot covers the contacted lead and the appointment.
	if len(board.Hot) != 2 {
		t.Errorf("hot = %d rows, want 2", len(board.Hot))
	}
	if len(board.Stale) != 1 {
		t.Errorf("stale = %d rows, want 1", len(board.Stale))
	}
	if len(board.UpcomingAppointments) != 1 || board.UpcomingAppointments[0].ID != withVisit.ID {
		t.Errorf("upcoming appointments = %v, want the booked prospect", board.UpcomingAppointments)
	}
	if len(board.Newest) != 3 {
		t.Errorf("newest = %d rows, want 3", len(board.Newest))
	}
	if board.Stats.WithAppointments != 1 {
		t.Errorf("stats.withAppointments = %d, want 1", board.Stats.WithAppointments)
	}
}

func TestDashboardScopedToAssignee(t *testing.T) {
	repo, _, svc := newQueryFixture(t)

	seedProspect(t, repo, domain.StatusContacted, testNow.Add(-24*time.Hour), testNow.Add(-24*time.Hour))
	outsider := uuid.New()

	board, err := svc.Dashboard(context.Background(), &outsider)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if len(board.Hot) != 0 || len(board.Stale) != 0 || len(board.Newest) != 0 {
		t.Errorf("scoped board should contain no foreign prospects, got hot=%d stale=%d newest=%d",
			len(board.Hot), len(board.Stale), len(board.Newest))
	}
	// Funnel stats stay global even on a scoped board.
	if board.Stats.Total != 1 {
		t.Errorf("stats.total = %d, want 1", board.Stats.Total)
	}
}

func TestCheckDuplicatePhone(t *testing.T) {
	repo, _, svc := newQueryFixture(t)

	existing := domain.Prospect{
		ID:        uuid.New(),
		Name:      "Duplicate Fixture",
		Phone:     "+525512345678",
		Source:    domain.SourceWebsite,
		Status:    domain.StatusNew,
		CreatedBy: uuid.New(),
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if err := repo.Create(context.Background(), &existing); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	tests := []struct {
		name       string
		phone      string
		wantExists bool
	}{
		{"exact match", "+525512345678", true},
		{"national format normalizes to match", "55 1234 5678", true},
		{"unknown number", "+525599999999", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.CheckDuplicatePhone(context.Background(), tt.phone)
			if err != nil {
				t.Fatalf("CheckDuplicatePhone() error = %v", err)
			}
			if resp.Exists != tt.wantExists {
				t.Errorf("exists = %v, want %v (normalized %q)", resp.Exists, tt.wantExists, resp.Phone)
			}
		})
	}
}

func TestStatsCounts(t *testing.T) {
	repo, _, svc := newQueryFixture(t)

	seedProspect(t, repo, domain.StatusConverted, testNow.Add(-40*24*time.Hour), testNow.Add(-35*24*time.Hour))
	seedProspect(t, repo, domain.StatusNew, testNow.Add(-time.Hour), testNow.Add(-time.Hour))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.Converted != 1 {
		t.Errorf("converted = %d, want 1", stats.Converted)
	}
	// Only the fresh prospect falls inside the recent window.
	if stats.Recent != 1 {
		t.Errorf("recent = %d, want 1", stats.Recent)
	}
	if stats.ByStatus[domain.StatusNew] != 1 || stats.ByStatus[domain.StatusConverted] != 1 {
		t.Errorf("byStatus = %v, want one of each", stats.ByStatus)
	}
}
