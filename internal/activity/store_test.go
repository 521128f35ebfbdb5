package activity

import (
	"context"
	"testing"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return frozenNow }
	t.Cleanup(func() { timeNow = orig })
}

// newTestStores opens a deal store in a temp dir and the journal on the
// same connection.
func newTestStores(t *testing.T) (*deals.SQLiteStore, *Store) {
	t.Helper()
	ds, err := deals.Open(t.TempDir(), "deals.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	s, err := New(ds.DB())
	require.NoError(t, err)
	return ds, s
}

func seedDeal(t *testing.T, ds *deals.SQLiteStore, org string) *deals.Deal {
	t.Helper()
	d := &deals.Deal{
		Organization: org,
		Stage:        stages.StageOutreach,
		UpdatedAt:    frozenNow.Add(-20 * 24 * time.Hour),
	}
	require.NoError(t, ds.Create(context.Background(), d))
	return d
}

// ─── New ─────────────────────────────────────────────────────────────────────

func TestNew_MigrationIsIdempotent(t *testing.T) {
	ds, _ := newTestStores(t)
	_, err := New(ds.DB())
	assert.NoError(t, err)
}

// ─── ParseInteractionType ────────────────────────────────────────────────────

func TestParseInteractionType(t *testing.T) {
	tests := []struct {
		raw     string
		want    InteractionType
		wantErr bool
	}{
		{"", TypeNote, false},
		{"call", TypeCall, false},
		{"  Meeting ", TypeMeeting, false},
		{"LINKEDIN", TypeLinkedIn, false},
		{"fax", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseInteractionType(tt.raw)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid interaction type")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ─── LogInteraction ──────────────────────────────────────────────────────────

func TestLogInteraction_TouchesDealAndFeed(t *testing.T) {
	freezeTime(t)
	ds, s := newTestStores(t)
	ctx := context.Background()
	d := seedDeal(t, ds, "Baycrest")

	in := &Interaction{DealID: d.ID, Type: TypeCall, Summary: "  Intro call with CFO  "}
	require.NoError(t, s.LogInteraction(ctx, in))

	assert.NotZero(t, in.ID)
	assert.Equal(t, "Intro call with CFO", in.Summary)
	assert.Equal(t, frozenNow, in.OccurredAt)
	assert.Equal(t, frozenNow, in.CreatedAt)

	got, err := ds.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, frozenNow, got.UpdatedAt)

	feed, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "💬", feed[0].Icon)
	assert.Equal(t, CategoryInteraction, feed[0].Category)
	assert.Equal(t, "call: Baycrest", feed[0].Title)
	assert.Equal(t, "Intro call with CFO", feed[0].Description)
	assert.Equal(t, d.ID, feed[0].DealID)
}

func TestLogInteraction_KeepsOccurredAt(t *testing.T) {
	freezeTime(t)
	ds, s := newTestStores(t)
	d := seedDeal(t, ds, "MGH")

	when := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	in := &Interaction{DealID: d.ID, Summary: "Conference chat", OccurredAt: when}
	require.NoError(t, s.LogInteraction(context.Background(), in))

	assert.Equal(t, TypeNote, in.Type)
	assert.Equal(t, when, in.OccurredAt)
}

func TestLogInteraction_Errors(t *testing.T) {
	ds, s := newTestStores(t)
	ctx := context.Background()
	d := seedDeal(t, ds, "MGH")

	err := s.LogInteraction(ctx, &Interaction{DealID: d.ID, Summary: "   "})
	assert.ErrorContains(t, err, "summary is required")

	err = s.LogInteraction(ctx, &Interaction{DealID: d.ID, Type: "fax", Summary: "x"})
	assert.ErrorContains(t, err, "invalid interaction type")

	err = s.LogInteraction(ctx, &Interaction{DealID: "missing", Summary: "x"})
	assert.ErrorIs(t, err, deals.ErrNotFound)

	feed, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

// ─── Interactions / InteractionCounts ────────────────────────────────────────

func TestInteractions_NewestFirst(t *testing.T) {
	freezeTime(t)
	ds, s := newTestStores(t)
	ctx := context.Background()
	d := seedDeal(t, ds, "MGH")
	other := seedDeal(t, ds, "Baycrest")

	for i, summary := range []string{"first", "second", "third"} {
		require.NoError(t, s.LogInteraction(ctx, &Interaction{
			DealID:     d.ID,
			Summary:    summary,
			OccurredAt: frozenNow.Add(time.Duration(i-3) * 24 * time.Hour),
		}))
	}
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: other.ID, Summary: "elsewhere"}))

	got, err := s.Interactions(ctx, d.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Summary)
	assert.Equal(t, "second", got[1].Summary)

	counts, err := s.InteractionCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{d.ID: 3, other.ID: 1}, counts)
}

func TestInteractions_CascadeOnDealDelete(t *testing.T) {
	ds, s := newTestStores(t)
	ctx := context.Background()
	d := seedDeal(t, ds, "MGH")
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: d.ID, Summary: "pricing review"}))

	require.NoError(t, ds.Delete(ctx, d.ID))

	got, err := s.Interactions(ctx, d.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	results, err := s.Search(ctx, "pricing", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

// ─── Search ──────────────────────────────────────────────────────────────────

func TestSearch_MatchesSummaryAndDetails(t *testing.T) {
	ds, s := newTestStores(t)
	ctx := context.Background()
	mgh := seedDeal(t, ds, "MGH")
	bay := seedDeal(t, ds, "Baycrest")

	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: mgh.ID, Type: TypeMeeting, Summary: "Budget review", Details: "CFO wants procurement involved"}))
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: bay.ID, Type: TypeEmail, Summary: "Sent procurement checklist"}))
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: bay.ID, Type: TypeCall, Summary: "Technical deep dive"}))

	results, err := s.Search(ctx, "procurement", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	filtered, err := s.Search(ctx, "procurement", SearchOptions{DealID: mgh.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "MGH", filtered[0].Organization)
	assert.Equal(t, "Budget review", filtered[0].Summary)

	byType, err := s.Search(ctx, "procurement", SearchOptions{Type: TypeEmail})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Baycrest", byType[0].Organization)
}

func TestSearch_QuotesOperators(t *testing.T) {
	ds, s := newTestStores(t)
	ctx := context.Background()
	d := seedDeal(t, ds, "MGH")
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: d.ID, Summary: "NOT a blocker"}))

	results, err := s.Search(ctx, `NOT "blocker`, SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_BlankQueryFallsBackToRecent(t *testing.T) {
	freezeTime(t)
	ds, s := newTestStores(t)
	ctx := context.Background()
	d := seedDeal(t, ds, "MGH")
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: d.ID, Summary: "older", OccurredAt: frozenNow.Add(-time.Hour)}))
	require.NoError(t, s.LogInteraction(ctx, &Interaction{DealID: d.ID, Summary: "newer"}))

	results, err := s.Search(ctx, "   ", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "newer", results[0].Summary)
	assert.Zero(t, results[0].Rank)
}

func TestSanitizeFTS(t *testing.T) {
	assert.Equal(t, `"pricing" "call"`, sanitizeFTS("pricing call"))
	assert.Equal(t, `"say" "hi"`, sanitizeFTS(`"say hi"`))
	assert.Equal(t, "", sanitizeFTS("  "))
}

// ─── Feed ────────────────────────────────────────────────────────────────────

func TestRecord_DefaultsAndOrder(t *testing.T) {
	freezeTime(t)
	_, s := newTestStores(t)
	ctx := context.Background()

	first := &Entry{Icon: "🎯", Title: "Deal created: MGH", CreatedAt: frozenNow.Add(-time.Hour)}
	require.NoError(t, s.Record(ctx, first))
	second := &Entry{Icon: "🚀", Title: "MGH stage updated", Description: "moved to qualify"}
	require.NoError(t, s.Record(ctx, second))

	assert.Equal(t, CategoryPipeline, second.Category)
	assert.Equal(t, frozenNow, second.CreatedAt)

	feed, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "MGH stage updated", feed[0].Title)
	assert.Equal(t, "Deal created: MGH", feed[1].Title)

	limited, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecord_RequiresTitle(t *testing.T) {
	_, s := newTestStores(t)
	assert.ErrorContains(t, s.Record(context.Background(), &Entry{}), "title is required")
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "a...", Truncate("aé", 2))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, DefaultLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxLimit, clampLimit(500))
}

func TestParseDetailLevel(t *testing.T) {
	assert.Equal(t, DetailSummary, ParseDetailLevel("summary"))
	assert.Equal(t, DetailFull, ParseDetailLevel("full"))
	assert.Equal(t, DetailStandard, ParseDetailLevel(""))
	assert.Equal(t, DetailStandard, ParseDetailLevel("verbose"))
}

func TestNavigationHint(t *testing.T) {
	assert.Empty(t, NavigationHint(5, 5, "x"))
	assert.Empty(t, NavigationHint(0, 0, "x"))
	assert.Equal(t, "\n📊 Showing 2 of 5.", NavigationHint(2, 5, ""))
	assert.Equal(t, "\n📊 Showing 2 of 5. Raise limit.", NavigationHint(2, 5, "Raise limit."))
}
