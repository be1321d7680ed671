// Package sqlite records survey transcripts and results in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"
)

// Session statuses written to the sessions table.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Sink is a SQLite implementation of ports.TranscriptSink and ports.TranscriptReader.
type Sink struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.TranscriptSink   = (*Sink)(nil)
	_ ports.TranscriptReader = (*Sink)(nil)
)

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Sink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Sink{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Sink) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			status TEXT NOT NULL DEFAULT 'in_progress',
			zip_code TEXT,
			full_name TEXT,
			email TEXT,
			license_type TEXT,
			license_status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			vehicle_identifier TEXT,
			vehicle_use TEXT,
			blind_spot_warning TEXT,
			commute_days_per_week TEXT,
			commute_one_way_miles TEXT,
			annual_mileage TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS survey_data (
			session_id TEXT PRIMARY KEY,
			completed_at TIMESTAMP NOT NULL,
			raw_data TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_session ON vehicles(session_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Sink) Close() error {
	return s.db.Close()
}

// CreateSession registers a session. Registering it twice is a no-op.
func (s *Sink) CreateSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id, started_at, status) VALUES (?, ?, ?)`,
		sessionID, s.now(), StatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// AppendMessage adds one line to the transcript.
func (s *Sink) AppendMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, timestamp, role, content) VALUES (?, ?, ?, ?)`,
		sessionID, s.now(), string(role), content)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// UpdateSnapshot stores the personal and license answers collected so far.
func (s *Sink) UpdateSnapshot(ctx context.Context, sessionID string, doc domain.Document) error {
	return s.updateSnapshot(ctx, s.db, sessionID, doc)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Sink) updateSnapshot(ctx context.Context, db execer, sessionID string, doc domain.Document) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sessions SET zip_code = ?, full_name = ?, email = ?, license_type = ?, license_status = ?
		 WHERE session_id = ?`,
		nullable(doc.PersonalInfo.ZipCode),
		nullable(doc.PersonalInfo.FullName),
		nullable(doc.PersonalInfo.Email),
		nullable(doc.License.Type),
		nullable(doc.License.Status),
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	return nil
}

// Complete marks the session completed and stores the final document and vehicles.
func (s *Sink) Complete(ctx context.Context, sessionID string, doc domain.Document) error {
	raw, err := sonic.MarshalString(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	if err := s.updateSnapshot(ctx, tx, sessionID, doc); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = ?, completed_at = ? WHERE session_id = ?`,
		StatusCompleted, now, sessionID); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear vehicles: %w", err)
	}
	for _, v := range doc.Vehicles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vehicles (session_id, vehicle_identifier, vehicle_use, blind_spot_warning,
				commute_days_per_week, commute_one_way_miles, annual_mileage)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID,
			field(v, catalog.VehicleIdentifier),
			field(v, catalog.VehicleUse),
			field(v, catalog.BlindSpotWarning),
			field(v, catalog.CommuteDaysPerWeek),
			field(v, catalog.CommuteOneWayMiles),
			field(v, catalog.AnnualMileage),
		); err != nil {
			return fmt.Errorf("failed to insert vehicle: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO survey_data (session_id, completed_at, raw_data) VALUES (?, ?, ?)`,
		sessionID, now, raw); err != nil {
		return fmt.Errorf("failed to store survey data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListSessions returns recorded sessions, newest first.
func (s *Sink) ListSessions(ctx context.Context) ([]domain.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, started_at, completed_at, status, full_name, email, zip_code
		 FROM sessions ORDER BY started_at DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []domain.SessionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Transcript returns the messages of a session in the order they were written.
func (s *Sink) Transcript(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if _, err := s.record(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, role, content FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var role string
		if err := rows.Scan(&m.Timestamp, &role, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SessionDetails returns a session with its transcript and, once completed, its final document.
func (s *Sink) SessionDetails(ctx context.Context, sessionID string) (*domain.SessionDetails, error) {
	rec, err := s.record(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.Transcript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	details := &domain.SessionDetails{Session: rec, Messages: messages}

	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT raw_data FROM survey_data WHERE session_id = ?`, sessionID).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query survey data: %w", err)
	default:
		var doc domain.Document
		if err := sonic.UnmarshalString(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal survey data: %w", err)
		}
		details.FinalData = &doc
	}
	return details, nil
}

func (s *Sink) record(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, started_at, completed_at, status, full_name, email, zip_code
		 FROM sessions WHERE session_id = ?`, sessionID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, domain.ErrSessionNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var completed sql.NullTime
	var fullName, email, zip sql.NullString
	if err := row.Scan(&rec.SessionID, &rec.StartedAt, &completed, &rec.Status, &fullName, &email, &zip); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan session: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		rec.CompletedAt = &t
	}
	rec.FullName = stringPtr(fullName)
	rec.Email = stringPtr(email)
	rec.ZipCode = stringPtr(zip)
	return rec, nil
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func field(v domain.Vehicle, key string) sql.NullString {
	if val, ok := v[key]; ok {
		return sql.NullString{String: val, Valid: true}
	}
	return sql.NullString{}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
