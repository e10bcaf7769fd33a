// internal/audit/audit.go
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"doctrade-ledger/internal/domain"
)

// Sink receives one record per state-changing operation. Delivery is
// best-effort: implementations must never fail the operation that emitted
// the record.
type Sink interface {
	Record(ctx context.Context, userID, action string, details map[string]any)
}

// PostgresSink writes audit records to the audit_logs table. Insert
// failures are logged and swallowed; the ledger mutation that emitted the
// record has already committed.
type PostgresSink struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresSink creates a PostgresSink.
func NewPostgresSink(db *sqlx.DB, logger *slog.Logger) *PostgresSink {
	return &PostgresSink{db: db, logger: logger}
}

// Record writes one audit row.
func (s *PostgresSink) Record(ctx context.Context, userID, action string, details map[string]any) {
	query := `INSERT INTO audit_logs (id, user_id, action, details, created_at)
              VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), userID, action, domain.Metadata(details), time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to write audit record", "action", action, "user_id", userID, "error", err)
	}
}

// NopSink discards audit records; used in tests.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(ctx context.Context, userID, action string, details map[string]any) {}
