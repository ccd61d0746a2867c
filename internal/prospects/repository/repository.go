package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"autoplaza_backend/internal/prospects/domain"
)

var (
	ErrNotFound       = errors.New("prospect not found")
	ErrDuplicatePhone = errors.New("a prospect with this phone already exists")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilter is the full query vocabulary for prospect listings. Nil pointer
// fields are ignored. IsHot and IsStale are evaluated against the cutoffs
// derived from "now" so the SQL predicates match the in-memory classifier.
type ListFilter struct {
	Status         *domain.Status
	Source         *domain.Source
	AssignedTo     *uuid.UUID
	CreatedBy      *uuid.UUID
	IsHot          *bool
	IsStale        *bool
	HasAppointment *bool
	Tags           []string
	Search         string
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time

	SortBy string // recent (default), oldest, priority, name
	Limit  int
	Offset int
}

// Stats aggregates the funnel for the dashboard and reports.
type Stats struct {
	Total            int                   `json:"total"`
	ByStatus         map[domain.Status]int `json:"byStatus"`
	BySource         map[domain.Source]int `json:"bySource"`
	Recent           int                   `json:"recent"`
	Hot              int                   `json:"hot"`
	Stale            int                   `json:"stale"`
	Converted        int                   `json:"converted"`
	WithAppointments int                   `json:"withAppointments"`
}

const prospectColumns = `id, name, phone, email, source, source_details, status,
	interested_listing_id, interested_listing_title, manual_listing_description,
	budget_min, budget_max, message, notes, appointment_date, appointment_notes,
	tags, created_by, assigned_to, created_at, updated_at`

// hotPredicate and stalePredicate mirror domain.IsHot / domain.IsStale. The
// cutoff placeholders receive timestamps computed in Go from the domain
// constants so the two rule sets cannot drift.
func hotPredicate(cutoffArg int) string {
	return fmt.Sprintf("(p.status = '%s' OR (p.status = '%s' AND p.created_at >= $%d))",
		domain.StatusAppointmentScheduled, domain.StatusContacted, cutoffArg)
}

func stalePredicate(cutoffArg int) string {
	return fmt.Sprintf("(p.status = '%s' AND p.updated_at < $%d)", domain.StatusNew, cutoffArg)
}

// priorityCaseSQL derives the priority ORDER BY expression from the canonical
// status order instead of repeating it here.
func priorityCaseSQL() string {
	var b strings.Builder
	b.WriteString("CASE p.status")
	for i, s := range domain.AllStatuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(domain.AllStatuses))
	return b.String()
}

func mapSortClause(sortBy string) string {
	switch sortBy {
	case "oldest":
		return "p.created_at ASC"
	case "priority":
		return priorityCaseSQL() + " ASC, p.updated_at DESC"
	case "name":
		return "p.name ASC"
	default: // recent
		return "p.created_at DESC"
	}
}

func scanProspect(row pgx.Row) (domain.Prospect, error) {
	var p domain.Prospect
	var budgetMin, budgetMax *int64

	err := row.Scan(
		&p.ID, &p.Name, &p.Phone, &p.Email, &p.Source, &p.SourceDetails, &p.Status,
		&p.InterestedListingID, &p.InterestedListingTitle, &p.ManualListingDescription,
		&budgetMin, &budgetMax, &p.Message, &p.Notes, &p.AppointmentDate, &p.AppointmentNotes,
		&p.Tags, &p.CreatedBy, &p.AssignedTo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Prospect{}, err
	}
	if budgetMin != nil && budgetMax != nil {
		p.Budget = &domain.Budget{Min: *budgetMin, Max: *budgetMax}
	}
	return p, nil
}

func budgetColumns(p *domain.Prospect) (*int64, *int64) {
	if p.Budget == nil {
		return nil, nil
	}
	return &p.Budget.Min, &p.Budget.Max
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) Create(ctx context.Context, prospect *domain.Prospect) error {
	budgetMin, budgetMax := budgetColumns(prospect)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prospects (
			id, name, phone, email, source, source_details, status,
			interested_listing_id, interested_listing_title, manual_listing_description,
			budget_min, budget_max, message, notes, appointment_date, appointment_notes,
			tags, created_by, assigned_to, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`,
		prospect.ID, prospect.Name, prospect.Phone, prospect.Email, prospect.Source, prospect.SourceDetails, prospect.Status,
		prospect.InterestedListingID, prospect.InterestedListingTitle, prospect.ManualListingDescription,
		budgetMin, budgetMax, prospect.Message, prospect.Notes, prospect.AppointmentDate, prospect.AppointmentNotes,
		prospect.Tags, prospect.CreatedBy, prospect.AssignedTo, prospect.CreatedAt, prospect.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Prospect, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM prospects p WHERE p.id = $1
	`, prospectColumns), id)

	prospect, err := scanProspect(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Prospect{}, ErrNotFound
	}
	if err != nil {
		return domain.Prospect{}, err
	}

	history, err := r.listReassignments(ctx, id)
	if err != nil {
		return domain.Prospect{}, err
	}
	prospect.ReassignmentHistory = history
	return prospect, nil
}

func (r *Repository) listReassignments(ctx context.Context, prospectID uuid.UUID) ([]domain.ReassignmentEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT from_user_id, to_user_id, reassigned_by, reason, created_at
		FROM prospect_reassignments
		WHERE prospect_id = $1
		ORDER BY created_at ASC, id ASC
	`, prospectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.ReassignmentEntry, 0)
	for rows.Next() {
		var e domain.ReassignmentEntry
		if err := rows.Scan(&e.FromUserID, &e.ToUserID, &e.ReassignedBy, &e.Reason, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) List(ctx context.Context, filter ListFilter, now time.Time) ([]domain.Prospect, int, error) {
	whereClause, args, argIdx := buildProspectWhere(filter, now)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM prospects p WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM prospects p
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, prospectColumns, whereClause, mapSortClause(filter.SortBy), argIdx, argIdx+1)

	prospects, err := r.queryProspects(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return prospects, total, nil
}

func buildProspectWhere(filter ListFilter, now time.Time) (string, []interface{}, int) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if filter.Status != nil {
		addEquals("p.status", *filter.Status)
	}
	if filter.Source != nil {
		addEquals("p.source", *filter.Source)
	}
	if filter.AssignedTo != nil {
		// Ownership falls back to the creator when no assignee is set.
		whereClauses = append(whereClauses, fmt.Sprintf("COALESCE(p.assigned_to, p.created_by) = $%d", argIdx))
		args = append(args, *filter.AssignedTo)
		argIdx++
	}
	if filter.CreatedBy != nil {
		addEquals("p.created_by", *filter.CreatedBy)
	}
	if filter.IsHot != nil {
		clause := hotPredicate(argIdx)
		if !*filter.IsHot {
			clause = "NOT " + clause
		}
		whereClauses = append(whereClauses, clause)
		args = append(args, now.Add(-domain.HotContactWindow))
		argIdx++
	}
	if filter.IsStale != nil {
		clause := stalePredicate(argIdx)
		if !*filter.IsStale {
			clause = "NOT " + clause
		}
		whereClauses = append(whereClauses, clause)
		args = append(args, now.Add(-domain.StaleNewThreshold))
		argIdx++
	}
	if filter.HasAppointment != nil {
		if *filter.HasAppointment {
			whereClauses = append(whereClauses, "p.appointment_date IS NOT NULL")
		} else {
			whereClauses = append(whereClauses, "p.appointment_date IS NULL")
		}
	}
	if len(filter.Tags) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("p.tags @> $%d", argIdx))
		args = append(args, filter.Tags)
		argIdx++
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.phone ILIKE $%d OR p.email ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, searchPattern)
		argIdx++
	}
	if filter.CreatedAfter != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.created_at >= $%d", argIdx))
		args = append(args, *filter.CreatedAfter)
		argIdx++
	}
	if filter.CreatedBefore != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.created_at <= $%d", argIdx))
		args = append(args, *filter.CreatedBefore)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func (r *Repository) queryProspects(ctx context.Context, query string, args ...interface{}) ([]domain.Prospect, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prospects := make([]domain.Prospect, 0)
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}
	return prospects, rows.Err()
}

func (r *Repository) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Prospect, error) {
	return r.queryProspects(ctx, fmt.Sprintf(`
		SELECT %s FROM prospects p
		WHERE COALESCE(p.assigned_to, p.created_by) = $1
		ORDER BY p.created_at DESC
	`, prospectColumns), userID)
}

func (r *Repository) ListByCreator(ctx context.Context, userID uuid.UUID) ([]domain.Prospect, error) {
	return r.queryProspects(ctx, fmt.Sprintf(`
		SELECT %s FROM prospects p
		WHERE p.created_by = $1
		ORDER BY p.created_at DESC
	`, prospectColumns), userID)
}

// assigneeClause narrows a query to one owner, with the creator fallback.
// Returns an empty clause when assignedTo is nil.
func assigneeClause(assignedTo *uuid.UUID, argIdx int, args []interface{}) (string, []interface{}, int) {
	if assignedTo == nil {
		return "", args, argIdx
	}
	clause := fmt.Sprintf(" AND COALESCE(p.assigned_to, p.created_by) = $%d", argIdx)
	return clause, append(args, *assignedTo), argIdx + 1
}

// ListHot returns hot prospects, appointments first, newest first within each
// group. limit <= 0 means no limit.
func (r *Repository) ListHot(ctx context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error) {
	args := []interface{}{now.Add(-domain.HotContactWindow)}
	where, args, argIdx := assigneeClause(assignedTo, 2, args)
	query := fmt.Sprintf(`
		SELECT %s FROM prospects p
		WHERE %s%s
		ORDER BY (p.status = '%s') DESC, p.created_at DESC
	`, prospectColumns, hotPredicate(1), where, domain.StatusAppointmentScheduled)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}
	return r.queryProspects(ctx, query, args...)
}

// ListStale returns stale prospects, the longest untouched first.
func (r *Repository) ListStale(ctx context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error) {
	args := []interface{}{now.Add(-domain.StaleNewThreshold)}
	where, args, argIdx := assigneeClause(assignedTo, 2, args)
	query := fmt.Sprintf(`
		SELECT %s FROM prospects p
		WHERE %s%s
		ORDER BY p.updated_at ASC
	`, prospectColumns, stalePredicate(1), where)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}
	return r.queryProspects(ctx, query, args...)
}

// ListUpcomingAppointments returns prospects with a future appointment,
// soonest first.
func (r *Repository) ListUpcomingAppointments(ctx context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error) {
	args := []interface{}{now}
	where, args, argIdx := assigneeClause(assignedTo, 2, args)
	query := fmt.Sprintf(`
		SELECT %s FROM prospects p
		WHERE p.appointment_date IS NOT NULL AND p.appointment_date >= $1%s
		ORDER BY p.appointment_date ASC
	`, prospectColumns, where)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}
	return r.queryProspects(ctx, query, args...)
}

func (r *Repository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM prospects WHERE phone = $1)`, phone).Scan(&exists)
	return exists, err
}

// Update persists the whole mutable state of the prospect. Writes are
// last-write-wins; the reassignment trail is only ever touched through
// AppendReassignment.
func (r *Repository) Update(ctx context.Context, prospect *domain.Prospect) error {
	budgetMin, budgetMax := budgetColumns(prospect)
	tag, err := r.pool.Exec(ctx, `
		UPDATE prospects SET
			name = $2, phone = $3, email = $4, source = $5, source_details = $6, status = $7,
			interested_listing_id = $8, interested_listing_title = $9, manual_listing_description = $10,
			budget_min = $11, budget_max = $12, message = $13, notes = $14,
			appointment_date = $15, appointment_notes = $16, tags = $17, updated_at = $18
		WHERE id = $1
	`,
		prospect.ID, prospect.Name, prospect.Phone, prospect.Email, prospect.Source, prospect.SourceDetails, prospect.Status,
		prospect.InterestedListingID, prospect.InterestedListingTitle, prospect.ManualListingDescription,
		budgetMin, budgetMax, prospect.Message, prospect.Notes,
		prospect.AppointmentDate, prospect.AppointmentNotes, prospect.Tags, prospect.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prospects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM prospects WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) IsAssignedTo(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	var assigned bool
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(assigned_to, created_by) = $2 FROM prospects WHERE id = $1
	`, id, userID).Scan(&assigned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return assigned, err
}

// AppendReassignment writes the audit row and moves the assignment pointer in
// one transaction so the trail can never disagree with the current assignee.
func (r *Repository) AppendReassignment(ctx context.Context, prospectID uuid.UUID, entry domain.ReassignmentEntry, updatedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO prospect_reassignments (prospect_id, from_user_id, to_user_id, reassigned_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, prospectID, entry.FromUserID, entry.ToUserID, entry.ReassignedBy, entry.Reason, entry.Timestamp)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE prospects SET assigned_to = $2, updated_at = $3 WHERE id = $1
	`, prospectID, entry.ToUserID, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetStats(ctx context.Context, now time.Time) (Stats, error) {
	stats := Stats{
		ByStatus: make(map[domain.Status]int),
		BySource: make(map[domain.Source]int),
	}

	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE p.created_at >= $1),
			COUNT(*) FILTER (WHERE %s),
			COUNT(*) FILTER (WHERE %s),
			COUNT(*) FILTER (WHERE p.status = '%s'),
			COUNT(*) FILTER (WHERE p.appointment_date IS NOT NULL)
		FROM prospects p
	`, hotPredicate(2), stalePredicate(3), domain.StatusConverted),
		now.Add(-domain.RecentWindow),
		now.Add(-domain.HotContactWindow),
		now.Add(-domain.StaleNewThreshold),
	).Scan(&stats.Total, &stats.Recent, &stats.Hot, &stats.Stale, &stats.Converted, &stats.WithAppointments)
	if err != nil {
		return Stats{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM prospects GROUP BY status`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.ByStatus[status] = count
	}
	if rows.Err() != nil {
		return Stats{}, rows.Err()
	}

	sourceRows, err := r.pool.Query(ctx, `SELECT source, COUNT(*) FROM prospects GROUP BY source`)
	if err != nil {
		return Stats{}, err
	}
	defer sourceRows.Close()
	for sourceRows.Next() {
		var source domain.Source
		var count int
		if err := sourceRows.Scan(&source, &count); err != nil {
			return Stats{}, err
		}
		stats.BySource[source] = count
	}
	return stats, sourceRows.Err()
}
