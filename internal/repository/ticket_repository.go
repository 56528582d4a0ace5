package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boardkit/ticket-board/internal/domain"
)

// ErrNotFound is returned when no ticket matches the given id or code.
var ErrNotFound = errors.New("ticket not found")

// ErrDuplicateCode is returned when inserting a ticket whose code is
// already taken.
var ErrDuplicateCode = errors.New("ticket code already exists")

// TicketRepository is the injectable storage capability backing the
// ticket API. Any persistence engine can sit behind it.
type TicketRepository interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	Insert(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_code, title, description, status, priority, category,
        customer_name, customer_type, csam_name, assigned_to, deadline,
        tags, notes, subtasks, completed_at, created_at, updated_at`

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_code, title, description, status, priority, category,
            customer_name, customer_type, csam_name, assigned_to, deadline,
            tags, notes, subtasks, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	tags, notes, subtasks, err := marshalCollections(ticket)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx, query,
		ticket.TicketCode,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerName,
		ticket.CustomerType,
		ticket.CSAMName,
		ticket.AssignedTo,
		ticket.Deadline,
		tags,
		notes,
		subtasks,
		ticket.CompletedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            customer_name=$6, customer_type=$7, csam_name=$8, assigned_to=$9, deadline=$10,
            tags=$11, notes=$12, subtasks=$13, completed_at=$14, updated_at=NOW()
        WHERE id=$15
        RETURNING updated_at`
	tags, notes, subtasks, err := marshalCollections(ticket)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerName,
		ticket.CustomerType,
		ticket.CSAMName,
		ticket.AssignedTo,
		ticket.Deadline,
		tags,
		notes,
		subtasks,
		ticket.CompletedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		tags     []byte
		notes    []byte
		subtasks []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.CustomerName,
		&ticket.CustomerType,
		&ticket.CSAMName,
		&ticket.AssignedTo,
		&ticket.Deadline,
		&tags,
		&notes,
		&subtasks,
		&ticket.CompletedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalCollections(&ticket, tags, notes, subtasks); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func marshalCollections(ticket *domain.Ticket) (tags, notes, subtasks []byte, err error) {
	if tags, err = json.Marshal(emptyIfNil(ticket.Tags)); err != nil {
		return nil, nil, nil, err
	}
	if notes, err = json.Marshal(emptyIfNil(ticket.Notes)); err != nil {
		return nil, nil, nil, err
	}
	subs := ticket.Subtasks
	if subs == nil {
		subs = []domain.Subtask{}
	}
	if subtasks, err = json.Marshal(subs); err != nil {
		return nil, nil, nil, err
	}
	return tags, notes, subtasks, nil
}

func unmarshalCollections(ticket *domain.Ticket, tags, notes, subtasks []byte) error {
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &ticket.Tags); err != nil {
			return err
		}
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &ticket.Notes); err != nil {
			return err
		}
	}
	if len(subtasks) > 0 {
		if err := json.Unmarshal(subtasks, &ticket.Subtasks); err != nil {
			return err
		}
	}
	return nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "ticket_code")
	}
	return false
}
