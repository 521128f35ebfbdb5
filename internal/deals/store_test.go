package deals

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(t.TempDir(), "deals.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// --- Open ---

func TestOpen_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir, "deals.db")
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "deals.db"))
	assert.NoError(t, err)
}

func TestOpen_MigrationIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir, "deals.db")
	require.NoError(t, err)
	require.NoError(t, s1.Create(context.Background(), &Deal{Organization: "MGH"}))
	require.NoError(t, s1.Close())

	s2, err := Open(dir, "deals.db")
	require.NoError(t, err)
	defer s2.Close()

	all, err := s2.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOpenPath_DriverError(t *testing.T) {
	orig := openDB
	defer func() { openDB = orig }()
	openDB = func(driverName, dsn string) (*sqlx.DB, error) {
		return nil, errors.New("boom")
	}

	_, err := OpenPath(filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open database")
}

// --- Create / Get ---

func TestCreate_AppliesDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Deal{Organization: "Baycrest"}
	require.NoError(t, s.Create(ctx, d))

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, stages.StageOutreach, d.Stage)
	assert.Equal(t, EngagementAdvisor, d.EngagementType)
	assert.Equal(t, frozenNow, d.CreatedAt)
	assert.Equal(t, frozenNow, d.StageEnteredAt)

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, *d, *got)
}

func TestCreate_RoundTripsAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Deal{
		Organization:   "MGH",
		Stage:          stages.StagePropose,
		DealValue:      25000,
		EngagementType: EngagementAssessment,
		NextAction:     "Send proposal",
		NextActionDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Notes:          "Referenceable logo",
		UpdatedAt:      frozenNow.Add(-48 * time.Hour),
	}
	for _, id := range meddpicc.IDs() {
		d.SetField(id, "value for "+string(id))
	}
	require.NoError(t, s.Create(ctx, d))

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, *d, *got)
}

func TestCreate_RejectsInvalidStage(t *testing.T) {
	s := newTestStore(t)
	err := s.Create(context.Background(), &Deal{Stage: "negotiation"})
	assert.ErrorContains(t, err, "invalid stage")
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- List ---

func TestList_OrderedByFunnel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, st := range []stages.Stage{stages.StageLost, stages.StageClose, stages.StageOutreach, stages.StageWon, stages.StageTeach} {
		require.NoError(t, s.Create(ctx, &Deal{Organization: string(st), Stage: st}))
	}

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	var got []stages.Stage
	for _, d := range all {
		got = append(got, d.Stage)
	}
	assert.Equal(t, []stages.Stage{
		stages.StageOutreach, stages.StageTeach, stages.StageClose, stages.StageWon, stages.StageLost,
	}, got)
}

func TestList_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, st := range []stages.Stage{stages.StageQualify, stages.StageQualify, stages.StageWon, stages.StageLost} {
		require.NoError(t, s.Create(ctx, &Deal{Stage: st}))
	}

	qualify, err := s.List(ctx, ListOptions{Stage: stages.StageQualify})
	require.NoError(t, err)
	assert.Len(t, qualify, 2)

	open, err := s.List(ctx, ListOptions{OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// --- Update ---

func TestUpdate_StageChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Deal{Stage: stages.StageQualify, StageEnteredAt: frozenNow.Add(-30 * 24 * time.Hour)}
	require.NoError(t, s.Create(ctx, d))

	updated, changed, err := s.Update(ctx, d.ID, Patch{
		Stage:  ptr(stages.StageExpand),
		Fields: map[meddpicc.FieldID]string{meddpicc.FieldEconomicBuyer: "CFO"},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, frozenNow, updated.StageEnteredAt)
	assert.Equal(t, "CFO", updated.EconomicBuyer)

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)
}

func TestUpdate_InvalidPatchKeepsRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Deal{Organization: "Baycrest"}
	require.NoError(t, s.Create(ctx, d))

	_, _, err := s.Update(ctx, d.ID, Patch{
		Organization:   ptr("Changed"),
		EngagementType: ptr(EngagementType("retainer")),
	})
	require.Error(t, err)

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Baycrest", got.Organization)
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Update(context.Background(), "missing", Patch{Notes: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Delete ---

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Deal{}
	require.NoError(t, s.Create(ctx, d))
	require.NoError(t, s.Delete(ctx, d.ID))

	_, err := s.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, d.ID), ErrNotFound)
}
