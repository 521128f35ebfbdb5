package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/jmoiron/sqlx"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Store keeps interactions and the activity feed. It shares its
// connection with the deal store so that logging an interaction and
// refreshing the deal happen in one transaction.
type Store struct {
	db *sqlx.DB
}

// New migrates the journal tables on db. The deals table is expected to
// live in the same database.
func New(db *sqlx.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("activity: migration: %w", err)
	}
	return s, nil
}

// ─── Migrations ──────────────────────────────────────────────────────────────

const schema = `
CREATE TABLE IF NOT EXISTS interactions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	deal_id     TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
	type        TEXT NOT NULL DEFAULT 'note'
		CHECK(type IN ('email','call','meeting','note','linkedin','conference')),
	summary     TEXT NOT NULL,
	details     TEXT NOT NULL DEFAULT '',
	occurred_at TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_deal     ON interactions(deal_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_occurred ON interactions(occurred_at DESC);

CREATE VIRTUAL TABLE IF NOT EXISTS interactions_fts USING fts5(
	summary,
	details,
	type,
	content='interactions',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS interactions_fts_insert AFTER INSERT ON interactions BEGIN
	INSERT INTO interactions_fts(rowid, summary, details, type)
	VALUES (new.id, new.summary, new.details, new.type);
END;

CREATE TRIGGER IF NOT EXISTS interactions_fts_delete AFTER DELETE ON interactions BEGIN
	INSERT INTO interactions_fts(interactions_fts, rowid, summary, details, type)
	VALUES ('delete', old.id, old.summary, old.details, old.type);
END;

CREATE TRIGGER IF NOT EXISTS interactions_fts_update AFTER UPDATE ON interactions BEGIN
	INSERT INTO interactions_fts(interactions_fts, rowid, summary, details, type)
	VALUES ('delete', old.id, old.summary, old.details, old.type);
	INSERT INTO interactions_fts(rowid, summary, details, type)
	VALUES (new.id, new.summary, new.details, new.type);
END;

CREATE TABLE IF NOT EXISTS activity_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	icon        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	deal_id     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_log(created_at DESC);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// ─── Interactions ────────────────────────────────────────────────────────────

// LogInteraction stores in against its deal, refreshes the deal's update
// time to CreatedAt and writes a feed entry, all in one transaction. It
// fills in ID and a missing CreatedAt or OccurredAt. Returns
// deals.ErrNotFound when the deal does not exist.
func (s *Store) LogInteraction(ctx context.Context, in *Interaction) error {
	in.Summary = strings.TrimSpace(in.Summary)
	if in.Summary == "" {
		return errors.New("interaction summary is required")
	}
	typ, err := ParseInteractionType(string(in.Type))
	if err != nil {
		return err
	}
	in.Type = typ

	if in.CreatedAt.IsZero() {
		in.CreatedAt = timeNow().UTC()
	}
	now := in.CreatedAt.UTC()
	if in.OccurredAt.IsZero() {
		in.OccurredAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("activity: begin log: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var org string
	if err := tx.GetContext(ctx, &org, `SELECT organization FROM deals WHERE id = ?`, in.DealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return deals.ErrNotFound
		}
		return fmt.Errorf("activity: lookup deal %s: %w", in.DealID, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (deal_id, type, summary, details, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.DealID, string(in.Type), in.Summary, in.Details,
		formatTime(in.OccurredAt), formatTime(in.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("activity: insert interaction: %w", err)
	}
	if in.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("activity: insert interaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE deals SET updated_at = ? WHERE id = ?`, formatTime(now), in.DealID,
	); err != nil {
		return fmt.Errorf("activity: touch deal %s: %w", in.DealID, err)
	}

	entry := &Entry{
		Icon:        "💬",
		Category:    CategoryInteraction,
		Title:       fmt.Sprintf("%s: %s", in.Type, (&deals.Deal{Organization: org}).Label()),
		Description: in.Summary,
		DealID:      in.DealID,
		CreatedAt:   now,
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("activity: commit log: %w", err)
	}
	return nil
}

// Interactions returns up to limit interactions for dealID, most recent
// first.
func (s *Store) Interactions(ctx context.Context, dealID string, limit int) ([]Interaction, error) {
	var rows []interactionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, deal_id, type, summary, details, occurred_at, created_at
		FROM interactions
		WHERE deal_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, dealID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("activity: interactions for %s: %w", dealID, err)
	}

	result := make([]Interaction, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toInteraction())
	}
	return result, nil
}

// InteractionCounts returns the number of interactions per deal id.
// Deals without interactions are absent from the map.
func (s *Store) InteractionCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		DealID string `db:"deal_id"`
		N      int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT deal_id, COUNT(*) AS n FROM interactions GROUP BY deal_id`,
	); err != nil {
		return nil, fmt.Errorf("activity: count interactions: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.DealID] = r.N
	}
	return counts, nil
}

// ─── Search (FTS5) ───────────────────────────────────────────────────────────

// Search runs a full-text query over interaction summaries and details.
// A blank query falls back to the most recent interactions.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return s.searchRecent(ctx, opts)
	}

	sqlStr := `
		SELECT i.id, i.deal_id, i.type, i.summary, i.details, i.occurred_at, i.created_at,
		       d.organization, fts.rank AS rank
		FROM interactions_fts fts
		JOIN interactions i ON i.id = fts.rowid
		JOIN deals d ON d.id = i.deal_id
		WHERE interactions_fts MATCH ?
	`
	args := []any{ftsQuery}
	sqlStr, args = applySearchFilters(sqlStr, args, opts)
	sqlStr += " ORDER BY fts.rank LIMIT ?"
	args = append(args, clampLimit(opts.Limit))

	return s.selectResults(ctx, "search", sqlStr, args)
}

// searchRecent returns the newest interactions without FTS, used when
// the query is blank.
func (s *Store) searchRecent(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	sqlStr := `
		SELECT i.id, i.deal_id, i.type, i.summary, i.details, i.occurred_at, i.created_at,
		       d.organization, 0.0 AS rank
		FROM interactions i
		JOIN deals d ON d.id = i.deal_id
		WHERE 1=1
	`
	var args []any
	sqlStr, args = applySearchFilters(sqlStr, args, opts)
	sqlStr += " ORDER BY i.occurred_at DESC, i.id DESC LIMIT ?"
	args = append(args, clampLimit(opts.Limit))

	return s.selectResults(ctx, "search recent", sqlStr, args)
}

func applySearchFilters(sqlStr string, args []any, opts SearchOptions) (string, []any) {
	if opts.DealID != "" {
		sqlStr += " AND i.deal_id = ?"
		args = append(args, opts.DealID)
	}
	if opts.Type != "" {
		sqlStr += " AND i.type = ?"
		args = append(args, string(opts.Type))
	}
	return sqlStr, args
}

func (s *Store) selectResults(ctx context.Context, op, sqlStr string, args []any) ([]SearchResult, error) {
	var rows []searchRow
	if err := s.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("activity: %s: %w", op, err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, SearchResult{
			Interaction:  r.toInteraction(),
			Organization: r.Organization,
			Rank:         r.Rank,
		})
	}
	return results, nil
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "pricing call" → `"pricing" "call"`
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}

// ─── Activity feed ───────────────────────────────────────────────────────────

// Record appends e to the feed, filling in ID and a missing CreatedAt.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("activity title is required")
	}
	if e.Category == "" {
		e.Category = CategoryPipeline
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = timeNow().UTC()
	}
	return insertEntry(ctx, s.db, e)
}

// Recent returns up to limit feed entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, icon, category, title, description, deal_id, created_at
		FROM activity_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("activity: recent: %w", err)
	}

	result := make([]Entry, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toEntry())
	}
	return result, nil
}

func insertEntry(ctx context.Context, db sqlx.ExecerContext, e *Entry) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO activity_log (icon, category, title, description, deal_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Icon, e.Category, e.Title, e.Description, e.DealID, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("activity: insert entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("activity: insert entry: %w", err)
	}
	return nil
}

// ─── Row mapping ─────────────────────────────────────────────────────────────

type interactionRow struct {
	ID         int64  `db:"id"`
	DealID     string `db:"deal_id"`
	Type       string `db:"type"`
	Summary    string `db:"summary"`
	Details    string `db:"details"`
	OccurredAt string `db:"occurred_at"`
	CreatedAt  string `db:"created_at"`
}

func (r interactionRow) toInteraction() Interaction {
	return Interaction{
		ID:         r.ID,
		DealID:     r.DealID,
		Type:       InteractionType(r.Type),
		Summary:    r.Summary,
		Details:    r.Details,
		OccurredAt: parseTime(r.OccurredAt),
		CreatedAt:  parseTime(r.CreatedAt),
	}
}

type searchRow struct {
	interactionRow
	Organization string  `db:"organization"`
	Rank         float64 `db:"rank"`
}

type entryRow struct {
	ID          int64  `db:"id"`
	Icon        string `db:"icon"`
	Category    string `db:"category"`
	Title       string `db:"title"`
	Description string `db:"description"`
	DealID      string `db:"deal_id"`
	CreatedAt   string `db:"created_at"`
}

func (r entryRow) toEntry() Entry {
	return Entry{
		ID:          r.ID,
		Icon:        r.Icon,
		Category:    r.Category,
		Title:       r.Title,
		Description: r.Description,
		DealID:      r.DealID,
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a stored timestamp; unparseable text reads as unset.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
