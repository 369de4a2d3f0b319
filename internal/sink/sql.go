package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/civictriage/ticketsynth/internal/synth"
)

// The DDL sticks to types sqlite3, postgres and mysql all accept.
const (
	createTicketTable = `CREATE TABLE IF NOT EXISTS synthetic_ticket (
	ticket_id            VARCHAR(32) PRIMARY KEY,
	citizen_id_hash      CHAR(16) NOT NULL,
	phone_hash           CHAR(16) NOT NULL,
	submitted_at         VARCHAR(32) NOT NULL,
	ward                 VARCHAR(64) NOT NULL,
	pincode              VARCHAR(8) NOT NULL,
	lat                  DOUBLE PRECISION NOT NULL,
	lon                  DOUBLE PRECISION NOT NULL,
	category             VARCHAR(64) NOT NULL,
	subcategory          VARCHAR(80) NOT NULL,
	description          TEXT NOT NULL,
	photos               TEXT NOT NULL,
	priority_claimed     VARCHAR(8) NOT NULL,
	language_code        VARCHAR(8) NOT NULL,
	channel              VARCHAR(32) NOT NULL,
	label_will_escalate  BOOLEAN NOT NULL,
	label_priority_score DOUBLE PRECISION NOT NULL
)`

	createBatchTable = `CREATE TABLE IF NOT EXISTS synthetic_batch (
	run_id      VARCHAR(36) PRIMARY KEY,
	seed        BIGINT NOT NULL,
	total       BIGINT NOT NULL,
	escalated   BIGINT NOT NULL,
	finished_at TIMESTAMP NOT NULL
)`

	insertTicket = `INSERT INTO synthetic_ticket (
	ticket_id, citizen_id_hash, phone_hash, submitted_at, ward, pincode, lat, lon,
	category, subcategory, description, photos, priority_claimed, language_code,
	channel, label_will_escalate, label_priority_score
) VALUES (
	:ticket_id, :citizen_id_hash, :phone_hash, :submitted_at, :ward, :pincode, :lat, :lon,
	:category, :subcategory, :description, :photos, :priority_claimed, :language_code,
	:channel, :label_will_escalate, :label_priority_score
)`

	insertBatch = `INSERT INTO synthetic_batch (run_id, seed, total, escalated, finished_at)
VALUES (:run_id, :seed, :total, :escalated, :finished_at)`
)

// TicketRow is the flattened synthetic_ticket row.
type TicketRow struct {
	TicketID           string  `db:"ticket_id"`
	CitizenIDHash      string  `db:"citizen_id_hash"`
	PhoneHash          string  `db:"phone_hash"`
	SubmittedAt        string  `db:"submitted_at"`
	Ward               string  `db:"ward"`
	Pincode            string  `db:"pincode"`
	Lat                float64 `db:"lat"`
	Lon                float64 `db:"lon"`
	Category           string  `db:"category"`
	Subcategory        string  `db:"subcategory"`
	Description        string  `db:"description"`
	Photos             string  `db:"photos"`
	PriorityClaimed    string  `db:"priority_claimed"`
	LanguageCode       string  `db:"language_code"`
	Channel            string  `db:"channel"`
	LabelWillEscalate  bool    `db:"label_will_escalate"`
	LabelPriorityScore float64 `db:"label_priority_score"`
}

// NewTicketRow flattens t; photos are stored as a JSON array.
func NewTicketRow(t *synth.Ticket) (TicketRow, error) {
	photos := t.Photos
	if photos == nil {
		photos = []string{}
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return TicketRow{}, err
	}
	return TicketRow{
		TicketID:           t.TicketID,
		CitizenIDHash:      t.CitizenIDHash,
		PhoneHash:          t.PhoneHash,
		SubmittedAt:        t.SubmittedAt,
		Ward:               string(t.Location.Ward),
		Pincode:            t.Location.Pincode,
		Lat:                t.Location.Lat,
		Lon:                t.Location.Lon,
		Category:           string(t.Category),
		Subcategory:        t.Subcategory,
		Description:        t.Description,
		Photos:             string(raw),
		PriorityClaimed:    string(t.PriorityClaimed),
		LanguageCode:       string(t.Language),
		Channel:            string(t.Channel),
		LabelWillEscalate:  t.WillEscalate,
		LabelPriorityScore: t.PriorityScore,
	}, nil
}

// SQL inserts tickets into synthetic_ticket, committing every batchSize rows.
type SQL struct {
	db        *sqlx.DB
	tx        *sqlx.Tx
	batchSize int
	pending   int
}

// OpenSQL connects with driver (sqlite3, postgres or mysql) and prepares the schema.
// truncate empties synthetic_ticket first so reruns overwrite like the file sinks do.
func OpenSQL(ctx context.Context, driver, dsn string, batchSize int, truncate bool) (*SQL, error) {
	if driver == "sqlite3" {
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	s, err := NewSQL(ctx, db, batchSize, truncate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open handle. The SQL writer owns db from here on.
func NewSQL(ctx context.Context, db *sqlx.DB, batchSize int, truncate bool) (*SQL, error) {
	for _, ddl := range []string{createTicketTable, createBatchTable} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if truncate {
		if _, err := db.ExecContext(ctx, "DELETE FROM synthetic_ticket"); err != nil {
			return nil, fmt.Errorf("failed to truncate synthetic_ticket: %w", err)
		}
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &SQL{db: db, batchSize: batchSize}, nil
}

func (s *SQL) Write(ctx context.Context, t *synth.Ticket) error {
	row, err := NewTicketRow(t)
	if err != nil {
		return err
	}
	if s.tx == nil {
		if s.tx, err = s.db.BeginTxx(ctx, nil); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
	}
	if _, err := s.tx.NamedExecContext(ctx, insertTicket, row); err != nil {
		return fmt.Errorf("failed to insert %s: %w", t.TicketID, err)
	}
	s.pending++
	if s.pending >= s.batchSize {
		return s.commit()
	}
	return nil
}

// RecordRun commits outstanding rows and stores the batch summary.
func (s *SQL) RecordRun(ctx context.Context, info RunInfo) error {
	if err := s.commit(); err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, insertBatch, info); err != nil {
		return fmt.Errorf("failed to record batch %s: %w", info.RunID, err)
	}
	return nil
}

// Close commits whatever is pending; a partial batch is kept, not rolled back.
func (s *SQL) Close() error {
	return errors.Join(s.commit(), s.db.Close())
}

// DB exposes the handle for inspection.
func (s *SQL) DB() *sqlx.DB { return s.db }

func (s *SQL) commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx, s.pending = nil, 0
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// ensureSQLiteDir creates the parent directory for plain file DSNs.
func ensureSQLiteDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return nil
}
