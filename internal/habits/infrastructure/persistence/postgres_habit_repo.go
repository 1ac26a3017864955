package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

// PostgresHabitRepository implements domain.HabitStore using PostgreSQL.
type PostgresHabitRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHabitRepository creates a new PostgreSQL habit repository.
func NewPostgresHabitRepository(pool *pgxpool.Pool) *PostgresHabitRepository {
	return &PostgresHabitRepository{pool: pool}
}

// FindByID locks the row when called inside a transaction, so concurrent
// commands on the same habit run one after the other.
func (r *PostgresHabitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`
	if sharedPersistence.InTx(ctx) {
		query += ` FOR UPDATE`
	}
	habit, err := scanPostgresHabit(sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	return habit, err
}

func (r *PostgresHabitRepository) FindByTitle(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Habit, error) {
	row := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, `
		SELECT `+habitColumns+`
		FROM habits
		WHERE owner_id = $1 AND title_key = $2 AND NOT is_deleted
		LIMIT 1`,
		ownerID, domain.TitleKey(title),
	)
	habit, err := scanPostgresHabit(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return habit, err
}

func (r *PostgresHabitRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.HabitFilter) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = $1 AND NOT is_deleted`
	args := []any{ownerID}
	if !filter.IncludeArchived {
		query += ` AND NOT is_archived`
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		query += ` AND priority = $` + strconv.Itoa(len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at, id`

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		habit, err := scanPostgresHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Add(ctx context.Context, habit *domain.Habit) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO habits (`+habitColumns+`, title_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		habit.ID(),
		habit.OwnerID(),
		habit.Title(),
		habit.Description(),
		habit.CategoryID(),
		string(habit.Priority()),
		string(habit.RepeatPeriod()),
		habit.RepeatInterval(),
		habit.RepeatCount(),
		int64(habit.Duration()/time.Second),
		habit.CreatedOn().Time(),
		habit.IsCompleted(),
		habit.LastCompletedAt(),
		habit.IsDeleted(),
		habit.IsArchived(),
		habit.Version(),
		habit.CreatedAt(),
		habit.UpdatedAt(),
		domain.TitleKey(habit.Title()),
	)
	return translateWriteError(err)
}

func (r *PostgresHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		UPDATE habits SET
			title = $2,
			description = $3,
			category_id = $4,
			priority = $5,
			repeat_period = $6,
			repeat_interval = $7,
			repeat_count = $8,
			duration_seconds = $9,
			is_completed = $10,
			last_completed_at = $11,
			is_deleted = $12,
			is_archived = $13,
			version = $14,
			updated_at = $15,
			title_key = $16
		WHERE id = $1`,
		habit.ID(),
		habit.Title(),
		habit.Description(),
		habit.CategoryID(),
		string(habit.Priority()),
		string(habit.RepeatPeriod()),
		habit.RepeatInterval(),
		habit.RepeatCount(),
		int64(habit.Duration()/time.Second),
		habit.IsCompleted(),
		habit.LastCompletedAt(),
		habit.IsDeleted(),
		habit.IsArchived(),
		habit.Version(),
		habit.UpdatedAt(),
		domain.TitleKey(habit.Title()),
	)
	if err != nil {
		return translateWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrHabitNotFound, habit.ID())
	}
	return nil
}

// SoftDelete flags the habit deleted and bumps its version. Deleting an
// already deleted habit changes nothing.
func (r *PostgresHabitRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		UPDATE habits
		SET is_deleted = TRUE, version = version + 1, updated_at = $2
		WHERE id = $1 AND NOT is_deleted`,
		id, at,
	)
	return err
}

func scanPostgresHabit(row rowScanner) (*domain.Habit, error) {
	var (
		rec             habitRecord
		createdOn       time.Time
		durationSeconds int64
	)
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.Description, &rec.CategoryID, &rec.Priority,
		&rec.RepeatPeriod, &rec.RepeatInterval, &rec.RepeatCount, &durationSeconds, &createdOn,
		&rec.IsCompleted, &rec.LastCompletedAt, &rec.IsDeleted, &rec.IsArchived, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedOn = domain.DateOf(createdOn, time.UTC)
	rec.Duration = time.Duration(durationSeconds) * time.Second
	if rec.LastCompletedAt != nil {
		at := rec.LastCompletedAt.UTC()
		rec.LastCompletedAt = &at
	}
	return rec.toDomain()
}
