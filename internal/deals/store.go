package deals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store defines the persistence interface for deals.
// Abstracted so tools can be tested against any implementation.
type Store interface {
	Create(ctx context.Context, d *Deal) error
	Get(ctx context.Context, id string) (*Deal, error)
	List(ctx context.Context, opts ListOptions) ([]Deal, error)
	Update(ctx context.Context, id string, p Patch) (*Deal, bool, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ListOptions filters List. The zero value lists every deal.
type ListOptions struct {
	Stage    stages.Stage
	OpenOnly bool // exclude won and lost
	Limit    int
}

// openDB is a package-level var to allow test injection.
var openDB = sqlx.Open

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS deals (
	id                TEXT PRIMARY KEY,
	organization      TEXT    NOT NULL DEFAULT '',
	stage             TEXT    NOT NULL DEFAULT 'outreach'
		CHECK(stage IN ('outreach','teach','qualify','expand','propose','close','won','lost')),
	metrics           TEXT    NOT NULL DEFAULT '',
	economic_buyer    TEXT    NOT NULL DEFAULT '',
	decision_criteria TEXT    NOT NULL DEFAULT '',
	decision_process  TEXT    NOT NULL DEFAULT '',
	paper_process     TEXT    NOT NULL DEFAULT '',
	identified_pain   TEXT    NOT NULL DEFAULT '',
	champion          TEXT    NOT NULL DEFAULT '',
	competition       TEXT    NOT NULL DEFAULT '',
	deal_value        INTEGER NOT NULL DEFAULT 0,
	engagement_type   TEXT    NOT NULL DEFAULT 'advisor'
		CHECK(engagement_type IN ('advisor','activator','assessment','sdk')),
	next_action       TEXT    NOT NULL DEFAULT '',
	next_action_date  TEXT    NOT NULL DEFAULT '',
	notes             TEXT    NOT NULL DEFAULT '',
	stage_entered_at  TEXT    NOT NULL DEFAULT '',
	created_at        TEXT    NOT NULL,
	updated_at        TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_stage   ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_created ON deals(created_at DESC);
`

// stageRank orders List results along the funnel, lost last.
const stageRank = `CASE stage
	WHEN 'outreach' THEN 1
	WHEN 'teach'    THEN 2
	WHEN 'qualify'  THEN 3
	WHEN 'expand'   THEN 4
	WHEN 'propose'  THEN 5
	WHEN 'close'    THEN 6
	WHEN 'won'      THEN 7
	ELSE 8
END`

// Open creates dataDir if needed, opens the database file inside it and
// runs migrations.
func Open(dataDir, file string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("deals: create data dir: %w", err)
	}
	return OpenPath(filepath.Join(dataDir, file))
}

// OpenPath opens the database at path with WAL mode and runs migrations.
func OpenPath(path string) (*SQLiteStore, error) {
	db, err := openDB("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("deals: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("deals: migration: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying connection so other subsystems can keep
// their tables in the same file.
func (s *SQLiteStore) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts d, assigning an id, defaults and timestamps.
func (s *SQLiteStore) Create(ctx context.Context, d *Deal) error {
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return err
	}

	now := timeNow().UTC()
	if d.ID == "" {
		d.ID = NewID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
	if d.StageEnteredAt.IsZero() {
		d.StageEnteredAt = now
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO deals (
			id, organization, stage, metrics, economic_buyer, decision_criteria,
			decision_process, paper_process, identified_pain, champion, competition,
			deal_value, engagement_type, next_action, next_action_date, notes,
			stage_entered_at, created_at, updated_at
		) VALUES (
			:id, :organization, :stage, :metrics, :economic_buyer, :decision_criteria,
			:decision_process, :paper_process, :identified_pain, :champion, :competition,
			:deal_value, :engagement_type, :next_action, :next_action_date, :notes,
			:stage_entered_at, :created_at, :updated_at
		)`, toRow(d))
	if err != nil {
		return fmt.Errorf("deals: insert %s: %w", d.ID, err)
	}
	return nil
}

// Get returns the deal with id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Deal, error) {
	return getDeal(ctx, s.db, id)
}

// List returns deals ordered by funnel position, newest first within a stage.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Deal, error) {
	query := `SELECT * FROM deals WHERE 1=1`
	var args []any
	if opts.Stage != "" {
		query += ` AND stage = ?`
		args = append(args, string(opts.Stage))
	}
	if opts.OpenOnly {
		query += ` AND stage NOT IN ('won', 'lost')`
	}
	query += ` ORDER BY ` + stageRank + `, created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var rows []dealRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("deals: list: %w", err)
	}

	result := make([]Deal, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDeal())
	}
	return result, nil
}

// Update applies p to the stored deal inside a transaction and returns the
// merged record and whether its stage changed.
func (s *SQLiteStore) Update(ctx context.Context, id string, p Patch) (*Deal, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("deals: begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	d, err := getDeal(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}

	changed, err := ApplyPatch(d, p, timeNow().UTC())
	if err != nil {
		return nil, false, err
	}

	_, err = tx.NamedExecContext(ctx, `
		UPDATE deals SET
			organization = :organization, stage = :stage, metrics = :metrics,
			economic_buyer = :economic_buyer, decision_criteria = :decision_criteria,
			decision_process = :decision_process, paper_process = :paper_process,
			identified_pain = :identified_pain, champion = :champion,
			competition = :competition, deal_value = :deal_value,
			engagement_type = :engagement_type, next_action = :next_action,
			next_action_date = :next_action_date, notes = :notes,
			stage_entered_at = :stage_entered_at, updated_at = :updated_at
		WHERE id = :id`, toRow(d))
	if err != nil {
		return nil, false, fmt.Errorf("deals: update %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("deals: commit update: %w", err)
	}
	return d, changed, nil
}

// Delete removes the deal with id, or returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deals: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deals: delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func getDeal(ctx context.Context, q sqlx.QueryerContext, id string) (*Deal, error) {
	var r dealRow
	if err := sqlx.GetContext(ctx, q, &r, `SELECT * FROM deals WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("deals: get %s: %w", id, err)
	}
	d := r.toDeal()
	return &d, nil
}

// ─── Row mapping ─────────────────────────────────────────────────────────────

// dealRow is the column-for-column shape of the deals table. Times are
// stored as RFC3339 text, the next action date as YYYY-MM-DD.
type dealRow struct {
	ID               string `db:"id"`
	Organization     string `db:"organization"`
	Stage            string `db:"stage"`
	Metrics          string `db:"metrics"`
	EconomicBuyer    string `db:"economic_buyer"`
	DecisionCriteria string `db:"decision_criteria"`
	DecisionProcess  string `db:"decision_process"`
	PaperProcess     string `db:"paper_process"`
	IdentifiedPain   string `db:"identified_pain"`
	Champion         string `db:"champion"`
	Competition      string `db:"competition"`
	DealValue        int64  `db:"deal_value"`
	EngagementType   string `db:"engagement_type"`
	NextAction       string `db:"next_action"`
	NextActionDate   string `db:"next_action_date"`
	Notes            string `db:"notes"`
	StageEnteredAt   string `db:"stage_entered_at"`
	CreatedAt        string `db:"created_at"`
	UpdatedAt        string `db:"updated_at"`
}

func toRow(d *Deal) dealRow {
	return dealRow{
		ID:               d.ID,
		Organization:     d.Organization,
		Stage:            string(d.Stage),
		Metrics:          d.Metrics,
		EconomicBuyer:    d.EconomicBuyer,
		DecisionCriteria: d.DecisionCriteria,
		DecisionProcess:  d.DecisionProcess,
		PaperProcess:     d.PaperProcess,
		IdentifiedPain:   d.IdentifiedPain,
		Champion:         d.Champion,
		Competition:      d.Competition,
		DealValue:        d.DealValue,
		EngagementType:   string(d.EngagementType),
		NextAction:       d.NextAction,
		NextActionDate:   formatTime(d.NextActionDate, DateLayout),
		Notes:            d.Notes,
		StageEnteredAt:   formatTime(d.StageEnteredAt, time.RFC3339),
		CreatedAt:        formatTime(d.CreatedAt, time.RFC3339),
		UpdatedAt:        formatTime(d.UpdatedAt, time.RFC3339),
	}
}

func (r dealRow) toDeal() Deal {
	return Deal{
		ID:               r.ID,
		Organization:     r.Organization,
		Stage:            stages.Stage(r.Stage),
		Metrics:          r.Metrics,
		EconomicBuyer:    r.EconomicBuyer,
		DecisionCriteria: r.DecisionCriteria,
		DecisionProcess:  r.DecisionProcess,
		PaperProcess:     r.PaperProcess,
		IdentifiedPain:   r.IdentifiedPain,
		Champion:         r.Champion,
		Competition:      r.Competition,
		DealValue:        r.DealValue,
		EngagementType:   EngagementType(r.EngagementType),
		NextAction:       r.NextAction,
		NextActionDate:   parseTime(r.NextActionDate, DateLayout),
		Notes:            r.Notes,
		StageEnteredAt:   parseTime(r.StageEnteredAt, time.RFC3339),
		CreatedAt:        parseTime(r.CreatedAt, time.RFC3339),
		UpdatedAt:        parseTime(r.UpdatedAt, time.RFC3339),
	}
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}

// parseTime reads a stored timestamp; unparseable text reads as unset.
func parseTime(s, layout string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
