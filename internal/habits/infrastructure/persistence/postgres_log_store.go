package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

const (
	postgresLogSelect = `
		SELECT l.seq, l.id, l.habit_id, l.log_date, l.action, l.created_at
		FROM habit_logs l
		JOIN habits h ON h.id = l.habit_id`
	postgresLogOrder = ` ORDER BY l.log_date, l.created_at, l.seq`
)

// PostgresLogStore implements domain.LogStore using PostgreSQL.
type PostgresLogStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLogStore creates a new PostgreSQL log store.
func NewPostgresLogStore(pool *pgxpool.Pool) *PostgresLogStore {
	return &PostgresLogStore{pool: pool}
}

func (s *PostgresLogStore) Append(ctx context.Context, entry *domain.LogEntry) error {
	return sharedPersistence.Executor(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO habit_logs (id, habit_id, log_date, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq`,
		entry.ID,
		entry.HabitID,
		entry.Date.Time(),
		string(entry.Action),
		entry.CreatedAt,
	).Scan(&entry.Seq)
}

func (s *PostgresLogStore) ByHabit(ctx context.Context, habitID uuid.UUID) ([]domain.LogEntry, error) {
	return s.query(ctx, postgresLogSelect+` WHERE l.habit_id = $1`+postgresLogOrder, habitID)
}

func (s *PostgresLogStore) ByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.LogEntry, error) {
	return s.query(ctx, postgresLogSelect+` WHERE h.owner_id = $1`+postgresLogOrder, ownerID)
}

func (s *PostgresLogStore) ByDate(ctx context.Context, ownerID uuid.UUID, date domain.Date) ([]domain.LogEntry, error) {
	return s.query(ctx,
		postgresLogSelect+` WHERE h.owner_id = $1 AND l.log_date = $2`+postgresLogOrder,
		ownerID, date.Time(),
	)
}

func (s *PostgresLogStore) ByDateRange(ctx context.Context, ownerID uuid.UUID, start, end domain.Date) ([]domain.LogEntry, error) {
	return s.query(ctx,
		postgresLogSelect+` WHERE h.owner_id = $1 AND l.log_date BETWEEN $2 AND $3`+postgresLogOrder,
		ownerID, start.Time(), end.Time(),
	)
}

func (s *PostgresLogStore) ByActionType(ctx context.Context, ownerID uuid.UUID, action domain.ActionType, date domain.Date) ([]domain.LogEntry, error) {
	return s.query(ctx,
		postgresLogSelect+` WHERE h.owner_id = $1 AND l.action = $2 AND l.log_date = $3`+postgresLogOrder,
		ownerID, string(action), date.Time(),
	)
}

func (s *PostgresLogStore) LastForDay(ctx context.Context, ownerID, habitID uuid.UUID, date domain.Date) (*domain.LogEntry, error) {
	row := sharedPersistence.Executor(ctx, s.pool).QueryRow(ctx,
		postgresLogSelect+`
		WHERE h.owner_id = $1 AND l.habit_id = $2 AND l.log_date = $3
		ORDER BY l.created_at DESC, l.seq DESC
		LIMIT 1`,
		ownerID, habitID, date.Time(),
	)
	entry, err := scanPostgresEntry(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *PostgresLogStore) query(ctx context.Context, query string, args ...any) ([]domain.LogEntry, error) {
	rows, err := sharedPersistence.Executor(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		entry, err := scanPostgresEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanPostgresEntry(row rowScanner) (domain.LogEntry, error) {
	var (
		rec     entryRecord
		logDate time.Time
	)
	if err := row.Scan(&rec.Seq, &rec.ID, &rec.HabitID, &logDate, &rec.Action, &rec.CreatedAt); err != nil {
		return domain.LogEntry{}, err
	}
	rec.Date = domain.DateOf(logDate, time.UTC)
	return rec.toDomain()
}
