// Package history persists sync outcomes to postgres for audit
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	commonHttp "github.com/baely/mirror/internal/common/http"
	"github.com/baely/mirror/internal/mirror"
)

// Record is a persisted sync outcome
type Record struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Store records engine outcomes in postgres. It implements mirror.Recorder.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens a connection to the sync history database
func NewStore(user, password, host, port, db string, logger *slog.Logger) (*Store, error) {
	connString := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, password, host, port, db)
	driver, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     driver,
		logger: logger,
	}, nil
}

// Record implements mirror.Recorder. Recording is best-effort; a failed
// insert is logged and never fails the event being processed.
func (s *Store) Record(ctx context.Context, outcome mirror.Outcome) {
	q := `INSERT INTO sync_event (id, source_id, action, detail, amount, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, q,
		uuid.NewString(),
		outcome.SourceID,
		outcome.Action,
		outcome.Detail,
		outcome.Amount,
		outcome.OccurredAt.Unix(),
	)
	if err != nil {
		s.logger.Error("Failed to record sync outcome", "source_id", outcome.SourceID, "error", err)
	}
}

// Recent returns the most recent sync outcomes, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	records := make([]Record, 0)
	q := `SELECT id, source_id, action, detail, amount, occurred_at FROM sync_event ORDER BY occurred_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var record Record
		var occurred int64
		if err := rows.Scan(&record.ID, &record.SourceID, &record.Action, &record.Detail, &record.Amount, &occurred); err != nil {
			return nil, err
		}
		record.OccurredAt = time.Unix(occurred, 0).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}

// Chi returns a router exposing the recent sync history
func (s *Store) Chi() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleHistory)
	return r
}

func (s *Store) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := s.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to fetch sync history", "error", err)
		commonHttp.Error(w, err, http.StatusInternalServerError)
		return
	}

	commonHttp.Success(w, map[string]interface{}{"events": records})
}
