package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database/sqlite"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

const sqliteOutboxColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	dbConn *sql.DB
	now    func() time.Time
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(dbConn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{dbConn: dbConn, now: time.Now}
}

func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	return r.insert(ctx, sharedPersistence.SQLiteExecutor(ctx, r.dbConn), msg)
}

// SaveBatch inserts all messages in the caller's transaction, or in its own
// when ctx has none.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.insert(ctx, info.Tx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, msg := range msgs {
		if err := r.insert(ctx, tx, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) insert(ctx context.Context, exec sharedPersistence.SQLExecutor, msg *Message) error {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
	}

	result, err := exec.ExecContext(ctx, `
		INSERT INTO outbox (
			event_id, aggregate_type, aggregate_id, event_type, routing_key,
			payload, metadata, created_at, next_retry_at, dead_lettered_at, dead_letter_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		sqlite.FormatTimestamp(msg.CreatedAt),
		sqlite.NullTimestamp(msg.NextRetryAt),
		sqlite.NullTimestamp(msg.DeadLetteredAt),
		nullString(msg.DeadLetterReason),
	)
	if err != nil {
		return err
	}
	msg.ID, err = result.LastInsertId()
	return err
}

func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	return r.query(ctx, `
		SELECT `+sqliteOutboxColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		sqlite.FormatTimestamp(r.now()), limit,
	)
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.dbConn).ExecContext(ctx,
		`UPDATE outbox SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`,
		sqlite.FormatTimestamp(r.now()), id,
	)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.dbConn).ExecContext(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1,
		    last_error = ?,
		    next_retry_at = ?
		WHERE id = ?`,
		errMsg, sqlite.FormatTimestamp(nextRetryAt), id,
	)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.dbConn).ExecContext(ctx,
		`UPDATE outbox SET dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		sqlite.FormatTimestamp(r.now()), reason, id,
	)
	return err
}

func (r *SQLiteRepository) GetFailed(ctx context.Context, maxRetries, limit int) ([]*Message, error) {
	return r.query(ctx, `
		SELECT `+sqliteOutboxColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND retry_count > 0
		  AND retry_count < ?
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		maxRetries, sqlite.FormatTimestamp(r.now()), limit,
	)
}

func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := r.now().AddDate(0, 0, -olderThanDays)
	result, err := sharedPersistence.SQLiteExecutor(ctx, r.dbConn).ExecContext(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		sqlite.FormatTimestamp(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*Message, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.dbConn).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanSQLiteMessage(rows *sql.Rows) (*Message, error) {
	var (
		msg                                    Message
		eventID, aggregateID, payload, created string
		metadata, published, nextRetry         sql.NullString
		lastError, deadAt, deadReason          sql.NullString
	)
	err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &created, &published, &nextRetry, &msg.RetryCount,
		&lastError, &deadAt, &deadReason,
	)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d: event_id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d: aggregate_id: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = sqlite.ParseTimestamp(created); err != nil {
		return nil, fmt.Errorf("outbox %d: created_at: %w", msg.ID, err)
	}
	msg.Payload = json.RawMessage(payload)
	if metadata.Valid {
		msg.Metadata = json.RawMessage(metadata.String)
	}
	if msg.PublishedAt, err = sqlite.ParseNullTimestamp(published); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = sqlite.ParseNullTimestamp(nextRetry); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = sqlite.ParseNullTimestamp(deadAt); err != nil {
		return nil, err
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
