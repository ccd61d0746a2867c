package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"autoplaza_backend/internal/prospects/cache"
	"autoplaza_backend/internal/prospects/domain"
	"autoplaza_backend/internal/prospects/repository"
	"autoplaza_backend/internal/prospects/transport"
	"autoplaza_backend/platform/apperr"
	"autoplaza_backend/platform/clock"
	"autoplaza_backend/platform/phone"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	dashboardHotLimit         = 10
	dashboardStaleLimit       = 10
	dashboardAppointmentLimit = 5
	dashboardNewestLimit      = 10
)

// QueryService serves the read side: listings, classification views, stats
// and the dashboard.
type QueryService struct {
	repo  repository.ProspectReader
	stats *cache.StatsCache
	clk   clock.Clock
}

func NewQueryService(repo repository.ProspectReader, stats *cache.StatsCache, clk clock.Clock) *QueryService {
	return &QueryService{repo: repo, stats: stats, clk: clk}
}

func (s *QueryService) GetByID(ctx context.Context, id uuid.UUID) (transport.ProspectResponse, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProspectResponse{}, apperr.NotFound("prospect not found")
		}
		return transport.ProspectResponse{}, err
	}
	return transport.ToProspectResponse(prospect, s.clk.Now()), nil
}

func (s *QueryService) List(ctx context.Context, req transport.ListProspectsRequest) (transport.ProspectListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	now := s.clk.Now()
	filter := toListFilter(req)
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	prospects, total, err := s.repo.List(ctx, filter, now)
	if err != nil {
		return transport.ProspectListResponse{}, err
	}

	return transport.ProspectListResponse{
		Items:    transport.ToProspectResponses(prospects, now),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func toListFilter(req transport.ListProspectsRequest) repository.ListFilter {
	return repository.ListFilter{
		Status:         req.Status,
		Source:         req.Source,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      req.CreatedBy,
		IsHot:          req.IsHot,
		IsStale:        req.IsStale,
		HasAppointment: req.HasAppointment,
		Tags:           req.Tags,
		Search:         req.Search,
		CreatedAfter:   req.CreatedAfter,
		CreatedBefore:  req.CreatedBefore,
		SortBy:         req.SortBy,
	}
}

// CheckDuplicatePhone reports whether a prospect already exists for the
// phone number. The unique index remains the real guard; this exists so the
// UI can warn before submitting.
func (s *QueryService) CheckDuplicatePhone(ctx context.Context, rawPhone string) (transport.DuplicateCheckResponse, error) {
	normalized := phone.NormalizeE164(rawPhone)
	exists, err := s.repo.ExistsByPhone(ctx, normalized)
	if err != nil {
		return transport.DuplicateCheckResponse{}, err
	}
	return transport.DuplicateCheckResponse{Phone: normalized, Exists: exists}, nil
}

func (s *QueryService) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]transport.ProspectResponse, error) {
	prospects, err := s.repo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}
	return transport.ToProspectResponses(prospects, s.clk.Now()), nil
}

func (s *QueryService) ListByCreator(ctx context.Context, userID uuid.UUID) ([]transport.ProspectResponse, error) {
	prospects, err := s.repo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return transport.ToProspectResponses(prospects, s.clk.Now()), nil
}

func (s *QueryService) ListHot(ctx context.Context, limit int) ([]transport.ProspectResponse, error) {
	now := s.clk.Now()
	prospects, err := s.repo.ListHot(ctx, now, nil, limit)
	if err != nil {
		return nil, err
	}
	return transport.ToProspectResponses(prospects, now), nil
}

func (s *QueryService) ListStale(ctx context.Context, limit int) ([]transport.ProspectResponse, error) {
	now := s.clk.Now()
	prospects, err := s.repo.ListStale(ctx, now, nil, limit)
	if err != nil {
		return nil, err
	}
	return transport.ToProspectResponses(prospects, now), nil
}

func (s *QueryService) Stats(ctx context.Context) (transport.StatsResponse, error) {
	stats, err := s.stats.GetStats(ctx, s.clk.Now())
	if err != nil {
		return transport.StatsResponse{}, err
	}
	return transport.ToStatsResponse(stats), nil
}

// Dashboard assembles the landing view in one round trip. The five queries
// are independent, so they run concurrently; the first failure cancels the
// rest and the caller gets a plain error instead of a partial board. The
// optional assignedTo narrows the lists to one owner; the funnel stats stay
// global.
func (s *QueryService) Dashboard(ctx context.Context, assignedTo *uuid.UUID) (transport.DashboardResponse, error) {
	now := s.clk.Now()

	var (
		stats  repository.Stats
		hot    []domain.Prospect
		stale  []domain.Prospect
		visits []domain.Prospect
		newest []domain.Prospect
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.stats.GetStats(gctx, now)
		return err
	})
	g.Go(func() error {
		var err error
		hot, err = s.repo.ListHot(gctx, now, assignedTo, dashboardHotLimit)
		return err
	})
	g.Go(func() error {
		var err error
		stale, err = s.repo.ListStale(gctx, now, assignedTo, dashboardStaleLimit)
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = s.repo.ListUpcomingAppointments(gctx, now, assignedTo, dashboardAppointmentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		newest, _, err = s.repo.List(gctx, repository.ListFilter{AssignedTo: assignedTo, SortBy: "recent", Limit: dashboardNewestLimit}, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, err
	}

	return transport.DashboardResponse{
		Stats:                transport.ToStatsResponse(stats),
		Hot:                  transport.ToProspectResponses(hot, now),
		Stale:                transport.ToProspectResponses(stale, now),
		UpcomingAppointments: transport.ToProspectResponses(visits, now),
		Newest:               transport.ToProspectResponses(newest, now),
	}, nil
}
