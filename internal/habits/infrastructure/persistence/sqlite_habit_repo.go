package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database/sqlite"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

const habitColumns = `id, owner_id, title, description, category_id, priority,
	repeat_period, repeat_interval, repeat_count, duration_seconds, created_on,
	is_completed, last_completed_at, is_deleted, is_archived, version, created_at, updated_at`

// SQLiteHabitRepository implements domain.HabitStore using SQLite.
type SQLiteHabitRepository struct {
	dbConn *sql.DB
}

// NewSQLiteHabitRepository creates a new SQLite habit repository.
func NewSQLiteHabitRepository(dbConn *sql.DB) *SQLiteHabitRepository {
	return &SQLiteHabitRepository{dbConn: dbConn}
}

func (r *SQLiteHabitRepository) exec(ctx context.Context) sharedPersistence.SQLExecutor {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

func (r *SQLiteHabitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	row := r.exec(ctx).QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id.String())
	habit, err := scanSQLiteHabit(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return habit, err
}

func (r *SQLiteHabitRepository) FindByTitle(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Habit, error) {
	row := r.exec(ctx).QueryRowContext(ctx, `
		SELECT `+habitColumns+`
		FROM habits
		WHERE owner_id = ? AND title_key = ? AND is_deleted = 0
		LIMIT 1`,
		ownerID.String(), domain.TitleKey(title),
	)
	habit, err := scanSQLiteHabit(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return habit, err
}

func (r *SQLiteHabitRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.HabitFilter) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = ? AND is_deleted = 0`
	args := []any{ownerID.String()}
	if !filter.IncludeArchived {
		query += ` AND is_archived = 0`
	}
	if filter.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, string(*filter.Priority))
	}
	if filter.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID.String())
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		habit, err := scanSQLiteHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (r *SQLiteHabitRepository) Add(ctx context.Context, habit *domain.Habit) error {
	_, err := r.exec(ctx).ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`, title_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID().String(),
		habit.OwnerID().String(),
		habit.Title(),
		habit.Description(),
		nullUUID(habit.CategoryID()),
		string(habit.Priority()),
		string(habit.RepeatPeriod()),
		habit.RepeatInterval(),
		habit.RepeatCount(),
		int64(habit.Duration()/time.Second),
		habit.CreatedOn().String(),
		boolToInt(habit.IsCompleted()),
		sqlite.NullTimestamp(habit.LastCompletedAt()),
		boolToInt(habit.IsDeleted()),
		boolToInt(habit.IsArchived()),
		habit.Version(),
		sqlite.FormatTimestamp(habit.CreatedAt()),
		sqlite.FormatTimestamp(habit.UpdatedAt()),
		domain.TitleKey(habit.Title()),
	)
	return translateWriteError(err)
}

func (r *SQLiteHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	result, err := r.exec(ctx).ExecContext(ctx, `
		UPDATE habits SET
			title = ?,
			title_key = ?,
			description = ?,
			category_id = ?,
			priority = ?,
			repeat_period = ?,
			repeat_interval = ?,
			repeat_count = ?,
			duration_seconds = ?,
			is_completed = ?,
			last_completed_at = ?,
			is_deleted = ?,
			is_archived = ?,
			version = ?,
			updated_at = ?
		WHERE id = ?`,
		habit.Title(),
		domain.TitleKey(habit.Title()),
		habit.Description(),
		nullUUID(habit.CategoryID()),
		string(habit.Priority()),
		string(habit.RepeatPeriod()),
		habit.RepeatInterval(),
		habit.RepeatCount(),
		int64(habit.Duration()/time.Second),
		boolToInt(habit.IsCompleted()),
		sqlite.NullTimestamp(habit.LastCompletedAt()),
		boolToInt(habit.IsDeleted()),
		boolToInt(habit.IsArchived()),
		habit.Version(),
		sqlite.FormatTimestamp(habit.UpdatedAt()),
		habit.ID().String(),
	)
	if err != nil {
		return translateWriteError(err)
	}
	return expectOneRow(result, habit.ID())
}

// SoftDelete flags the habit deleted and bumps its version. Deleting an
// already deleted habit changes nothing.
func (r *SQLiteHabitRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.exec(ctx).ExecContext(ctx, `
		UPDATE habits
		SET is_deleted = 1, version = version + 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		sqlite.FormatTimestamp(at), id.String(),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteHabit(row rowScanner) (*domain.Habit, error) {
	var (
		id, ownerID, title, description string
		priority, period, createdOn     string
		createdAt, updatedAt            string
		categoryID, lastCompletedAt     sql.NullString
		interval, count, version        int
		durationSeconds                 int64
		completed, deleted, archived    int
	)
	err := row.Scan(
		&id, &ownerID, &title, &description, &categoryID, &priority,
		&period, &interval, &count, &durationSeconds, &createdOn,
		&completed, &lastCompletedAt, &deleted, &archived, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := habitRecord{
		Title:          title,
		Description:    description,
		Priority:       priority,
		RepeatPeriod:   period,
		RepeatInterval: interval,
		RepeatCount:    count,
		Duration:       time.Duration(durationSeconds) * time.Second,
		IsCompleted:    completed != 0,
		IsDeleted:      deleted != 0,
		IsArchived:     archived != 0,
		Version:        version,
	}
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("habit id: %w", err)
	}
	if rec.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, fmt.Errorf("habit %s owner_id: %w", id, err)
	}
	if categoryID.Valid {
		cid, err := uuid.Parse(categoryID.String)
		if err != nil {
			return nil, fmt.Errorf("habit %s category_id: %w", id, err)
		}
		rec.CategoryID = &cid
	}
	if rec.CreatedOn, err = domain.ParseDate(createdOn); err != nil {
		return nil, fmt.Errorf("habit %s created_on: %w", id, err)
	}
	if rec.LastCompletedAt, err = sqlite.ParseNullTimestamp(lastCompletedAt); err != nil {
		return nil, fmt.Errorf("habit %s last_completed_at: %w", id, err)
	}
	if rec.CreatedAt, err = sqlite.ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("habit %s created_at: %w", id, err)
	}
	if rec.UpdatedAt, err = sqlite.ParseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("habit %s updated_at: %w", id, err)
	}
	return rec.toDomain()
}

func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expectOneRow(result sql.Result, id uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	return nil
}
