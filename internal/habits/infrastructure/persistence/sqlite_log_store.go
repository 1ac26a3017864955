package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database/sqlite"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

const (
	sqliteLogSelect = `
		SELECT l.seq, l.id, l.habit_id, l.log_date, l.action, l.created_at
		FROM habit_logs l
		JOIN habits h ON h.id = l.habit_id`
	sqliteLogOrder = ` ORDER BY l.log_date, l.created_at, l.seq`
)

// SQLiteLogStore implements domain.LogStore using SQLite.
type SQLiteLogStore struct {
	dbConn *sql.DB
}

// NewSQLiteLogStore creates a new SQLite log store.
func NewSQLiteLogStore(dbConn *sql.DB) *SQLiteLogStore {
	return &SQLiteLogStore{dbConn: dbConn}
}

func (s *SQLiteLogStore) Append(ctx context.Context, entry *domain.LogEntry) error {
	result, err := sharedPersistence.SQLiteExecutor(ctx, s.dbConn).ExecContext(ctx, `
		INSERT INTO habit_logs (id, habit_id, log_date, action, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID.String(),
		entry.HabitID.String(),
		entry.Date.String(),
		string(entry.Action),
		sqlite.FormatTimestamp(entry.CreatedAt),
	)
	if err != nil {
		return err
	}
	entry.Seq, err = result.LastInsertId()
	return err
}

func (s *SQLiteLogStore) ByHabit(ctx context.Context, habitID uuid.UUID) ([]domain.LogEntry, error) {
	return s.query(ctx, sqliteLogSelect+` WHERE l.habit_id = ?`+sqliteLogOrder, habitID.String())
}

func (s *SQLiteLogStore) ByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.LogEntry, error) {
	return s.query(ctx, sqliteLogSelect+` WHERE h.owner_id = ?`+sqliteLogOrder, ownerID.String())
}

func (s *SQLiteLogStore) ByDate(ctx context.Context, ownerID uuid.UUID, date domain.Date) ([]domain.LogEntry, error) {
	return s.query(ctx,
		sqliteLogSelect+` WHERE h.owner_id = ? AND l.log_date = ?`+sqliteLogOrder,
		ownerID.String(), date.String(),
	)
}

func (s *SQLiteLogStore) ByDateRange(ctx context.Context, ownerID uuid.UUID, start, end domain.Date) ([]domain.LogEntry, error) {
	return s.query(ctx,
		sqliteLogSelect+` WHERE h.owner_id = ? AND l.log_date BETWEEN ? AND ?`+sqliteLogOrder,
		ownerID.String(), start.String(), end.String(),
	)
}

func (s *SQLiteLogStore) ByActionType(ctx context.Context, ownerID uuid.UUID, action domain.ActionType, date domain.Date) ([]domain.LogEntry, error) {
	return s.query(ctx,
		sqliteLogSelect+` WHERE h.owner_id = ? AND l.action = ? AND l.log_date = ?`+sqliteLogOrder,
		ownerID.String(), string(action), date.String(),
	)
}

func (s *SQLiteLogStore) LastForDay(ctx context.Context, ownerID, habitID uuid.UUID, date domain.Date) (*domain.LogEntry, error) {
	row := sharedPersistence.SQLiteExecutor(ctx, s.dbConn).QueryRowContext(ctx,
		sqliteLogSelect+`
		WHERE h.owner_id = ? AND l.habit_id = ? AND l.log_date = ?
		ORDER BY l.created_at DESC, l.seq DESC
		LIMIT 1`,
		ownerID.String(), habitID.String(), date.String(),
	)
	entry, err := scanSQLiteEntry(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *SQLiteLogStore) query(ctx context.Context, query string, args ...any) ([]domain.LogEntry, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, s.dbConn).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		entry, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanSQLiteEntry(row rowScanner) (domain.LogEntry, error) {
	var (
		rec                                   entryRecord
		id, habitID, logDate, action, created string
	)
	if err := row.Scan(&rec.Seq, &id, &habitID, &logDate, &action, &created); err != nil {
		return domain.LogEntry{}, err
	}

	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return domain.LogEntry{}, fmt.Errorf("log entry %d id: %w", rec.Seq, err)
	}
	if rec.HabitID, err = uuid.Parse(habitID); err != nil {
		return domain.LogEntry{}, fmt.Errorf("log entry %s habit_id: %w", id, err)
	}
	if rec.Date, err = domain.ParseDate(logDate); err != nil {
		return domain.LogEntry{}, fmt.Errorf("log entry %s log_date: %w", id, err)
	}
	if rec.CreatedAt, err = sqlite.ParseTimestamp(created); err != nil {
		return domain.LogEntry{}, fmt.Errorf("log entry %s created_at: %w", id, err)
	}
	rec.Action = action
	return rec.toDomain()
}
