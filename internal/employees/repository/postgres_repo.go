package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

const (
	employeesTable              = "employees"
	pgInvalidTextRepresentation = "22P02"
)

var employeeColumns = []string{
	"id::text", "first_name", "last_name", "email", "department", "position",
	"status", "profile_image", "created_at", "updated_at",
}

// Queryer is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores employees in the employees table.
type PostgresRepository struct {
	db  Queryer
	psq sq.StatementBuilderType
}

func NewPostgresRepository(db Queryer) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		psq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error) {
	qb := r.psq.Select(employeeColumns...).From(employeesTable)
	if filter.Department != "" {
		qb = qb.Where(sq.Eq{"department": filter.Department})
	}
	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"status": string(filter.Status)})
	}
	q, args, err := qb.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Employee, 0, 16)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.Employee, error) {
	q, args, err := r.psq.Select(employeeColumns...).
		From(employeesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	e, err := scanEmployee(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, translatePgError(err)
	}
	return e, nil
}

// Insert relies on the column default for the id.
func (r *PostgresRepository) Insert(ctx context.Context, e *domain.Employee) (string, error) {
	q, args, err := r.psq.Insert(employeesTable).
		Columns("first_name", "last_name", "email", "department", "position",
			"status", "profile_image", "created_at", "updated_at").
		Values(e.FirstName, e.LastName, e.Email, e.Department, e.Position,
			string(e.Status), e.ProfileImage, e.CreatedAt, e.UpdatedAt).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	var id string
	if err := r.db.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Patch issues a single UPDATE touching only the requested columns.
func (r *PostgresRepository) Patch(ctx context.Context, id string, req domain.UpdateEmployeeRequest, now time.Time) error {
	ub := r.psq.Update(employeesTable)
	if req.FirstName != nil {
		ub = ub.Set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		ub = ub.Set("last_name", *req.LastName)
	}
	if req.Email != nil {
		ub = ub.Set("email", *req.Email)
	}
	if req.Department != nil {
		ub = ub.Set("department", *req.Department)
	}
	if req.Position != nil {
		ub = ub.Set("position", *req.Position)
	}
	if req.Status != nil {
		ub = ub.Set("status", string(*req.Status))
	}
	if req.ProfileImage != nil {
		ub = ub.Set("profile_image", *req.ProfileImage)
	}
	q, args, err := ub.
		Set("updated_at", sq.Expr("GREATEST(created_at, ?)", now)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	var got string
	if err := r.db.QueryRow(ctx, q, args...).Scan(&got); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	q, args, err := r.psq.Delete(employeesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e      domain.Employee
		status string
	)
	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Department,
		&e.Position,
		&status,
		&e.ProfileImage,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Status = domain.Status(status)
	return &e, nil
}

// translatePgError maps "no such row" conditions onto domain.ErrNotFound.
// A malformed uuid cannot name an existing row, so it is reported the same way.
func translatePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
		return domain.ErrNotFound
	}
	return err
}
