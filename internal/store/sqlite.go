package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			campaign_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			input TEXT NOT NULL,
			status TEXT NOT NULL,
			stage_outputs TEXT,
			error TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_created ON campaigns(created_at)`,
		`CREATE TABLE IF NOT EXISTS stage_events (
			event_id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			stage TEXT NOT NULL,
			kind TEXT NOT NULL,
			message TEXT,
			payload TEXT,
			ts INTEGER NOT NULL,
			final INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (campaign_id) REFERENCES campaigns(campaign_id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_stage_events_campaign_seq ON stage_events(campaign_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateCampaign inserts the initial campaign record.
func (s *SQLiteStore) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	input, err := json.Marshal(c.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO campaigns (campaign_id, topic, input, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Input.Topic, string(input), string(c.Status), c.CreatedAt)
	return err
}

// SaveCampaign writes the current status, outputs and error of a campaign.
func (s *SQLiteStore) SaveCampaign(ctx context.Context, c *domain.Campaign) error {
	outputs, err := json.Marshal(c.StageOutputs)
	if err != nil {
		return fmt.Errorf("failed to marshal stage outputs: %w", err)
	}
	var errData interface{}
	if c.Error != nil {
		raw, err := json.Marshal(c.Error)
		if err != nil {
			return fmt.Errorf("failed to marshal error: %w", err)
		}
		errData = string(raw)
	}
	var endedAt interface{}
	if c.EndedAt != nil {
		endedAt = *c.EndedAt
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = ?, stage_outputs = ?, error = ?, ended_at = ? WHERE campaign_id = ?`,
		string(c.Status), string(outputs), errData, endedAt, c.ID)
	return err
}

// GetCampaign retrieves a campaign by id. Returns nil when unknown.
func (s *SQLiteStore) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT campaign_id, input, status, stage_outputs, error, created_at, ended_at FROM campaigns WHERE campaign_id = ?`,
		campaignID)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns returns recent campaigns, newest first.
func (s *SQLiteStore) ListCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT campaign_id, input, status, stage_outputs, error, created_at, ended_at FROM campaigns ORDER BY created_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	var input string
	var status string
	var outputs, errData sql.NullString
	var endedAt sql.NullTime

	if err := row.Scan(&c.ID, &input, &status, &outputs, &errData, &c.CreatedAt, &endedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(input), &c.Input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input: %w", err)
	}
	c.Status = domain.CampaignStatus(status)
	if outputs.Valid && outputs.String != "" {
		if err := json.Unmarshal([]byte(outputs.String), &c.StageOutputs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stage outputs: %w", err)
		}
	}
	if errData.Valid && errData.String != "" {
		var sf domain.StageFailure
		if err := json.Unmarshal([]byte(errData.String), &sf); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error: %w", err)
		}
		c.Error = &sf
	}
	if endedAt.Valid {
		t := endedAt.Time
		c.EndedAt = &t
	}
	return &c, nil
}

// CreateEvent appends a stage event to the campaign's log.
func (s *SQLiteStore) CreateEvent(ctx context.Context, ev *domain.StageEvent) error {
	final := 0
	if ev.Final {
		final = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_events (event_id, campaign_id, seq, stage, kind, message, payload, ts, final) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.CampaignID, ev.Seq, string(ev.Stage), string(ev.Kind), ev.Message, string(ev.Payload), ev.Ts, final)
	return err
}

// GetEvents retrieves events for a campaign ordered by sequence number.
func (s *SQLiteStore) GetEvents(ctx context.Context, campaignID string, afterSeq int64, limit int) ([]domain.StageEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, campaign_id, seq, stage, kind, message, payload, ts, final FROM stage_events
		 WHERE campaign_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?`,
		campaignID, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.StageEvent
	for rows.Next() {
		var ev domain.StageEvent
		var stage, kind string
		var message, payload sql.NullString
		var final int
		if err := rows.Scan(&ev.EventID, &ev.CampaignID, &ev.Seq, &stage, &kind, &message, &payload, &ev.Ts, &final); err != nil {
			return nil, err
		}
		ev.Stage = domain.Stage(stage)
		ev.Kind = domain.EventKind(kind)
		if message.Valid {
			ev.Message = message.String
		}
		if payload.Valid && payload.String != "" {
			ev.Payload = json.RawMessage(payload.String)
		}
		ev.Final = final != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
