package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestJournal(t *testing.T, s *deals.SQLiteStore) *activity.Store {
	t.Helper()
	j, err := activity.New(s.DB())
	require.NoError(t, err)
	return j
}

func logInteraction(t *testing.T, j *activity.Store, in activity.Interaction) {
	t.Helper()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = frozenNow
	}
	require.NoError(t, j.LogInteraction(context.Background(), &in))
}

func staleOutreach(org string) deals.Deal {
	return deals.Deal{
		Organization:   org,
		Stage:          stages.StageOutreach,
		NextAction:     "Send case study",
		StageEnteredAt: frozenNow.Add(-24 * time.Hour),
		UpdatedAt:      frozenNow.Add(-20 * 24 * time.Hour),
	}
}

// --- deal_log_interaction ---

func TestInteractionLog_Success(t *testing.T) {
	freezeTime(t)
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	d := seedDeal(t, store, staleOutreach("MGH"))

	tool := NewInteractionLogTool(store, journal)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"deal_id": d.ID,
		"type":    "call",
		"summary": "Intro call with the CFO",
	}))
	require.NoError(t, err)
	require.False(t, isErrorResult(result), getResultText(result))

	text := getResultText(result)
	assert.Contains(t, text, `logged on "MGH"`)
	assert.Contains(t, text, "Type: call")
	assert.Contains(t, text, "When: 2026-03-10")
	assert.Contains(t, text, "Days since update: 0")
	assert.Contains(t, text, "Next best action: Execute your next action - Send case study")

	got, err := store.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, frozenNow, got.UpdatedAt)
}

func TestInteractionLog_OccurredAt(t *testing.T) {
	freezeTime(t)
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	d := seedDeal(t, store, staleOutreach("MGH"))

	tool := NewInteractionLogTool(store, journal)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"deal_id":     d.ID,
		"summary":     "Met at HIMSS",
		"type":        "conference",
		"occurred_at": "2026-03-01",
	}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "When: 2026-03-01")

	items, err := journal.Interactions(context.Background(), d.ID, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, activity.TypeConference, items[0].Type)
}

func TestInteractionLog_UserErrors(t *testing.T) {
	freezeTime(t)
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	d := seedDeal(t, store, staleOutreach("MGH"))
	tool := NewInteractionLogTool(store, journal)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing deal", map[string]interface{}{"summary": "x"}, "'deal_id' is required"},
		{"missing summary", map[string]interface{}{"deal_id": d.ID, "summary": "  "}, "'summary' is required"},
		{"bad type", map[string]interface{}{"deal_id": d.ID, "summary": "x", "type": "fax"}, "invalid interaction type"},
		{"bad date", map[string]interface{}{"deal_id": d.ID, "summary": "x", "occurred_at": "last week"}, "occurred_at: invalid timestamp"},
		{"unknown deal", map[string]interface{}{"deal_id": "missing", "summary": "x"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), newRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, isErrorResult(result))
			assert.Contains(t, getResultText(result), tt.want)
		})
	}

	items, err := journal.Interactions(context.Background(), d.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// --- deal_timeline ---

func TestDealTimeline_Empty(t *testing.T) {
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	d := seedDeal(t, store, staleOutreach("MGH"))

	tool := NewDealTimelineTool(store, journal)
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{"deal_id": d.ID}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), `No interactions logged for "MGH" yet`)
}

func TestDealTimeline_DetailLevels(t *testing.T) {
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	d := seedDeal(t, store, staleOutreach("MGH"))

	logInteraction(t, journal, activity.Interaction{DealID: d.ID, Type: activity.TypeEmail, Summary: "Sent deck", OccurredAt: frozenNow.Add(-72 * time.Hour)})
	logInteraction(t, journal, activity.Interaction{DealID: d.ID, Type: activity.TypeMeeting, Summary: "Discovery", Details: "CFO joined.\nBudget is approved.", OccurredAt: frozenNow.Add(-48 * time.Hour)})
	logInteraction(t, journal, activity.Interaction{DealID: d.ID, Type: activity.TypeCall, Summary: "Follow-up", OccurredAt: frozenNow.Add(-24 * time.Hour)})

	tool := NewDealTimelineTool(store, journal)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"deal_id": d.ID,
		"limit":   float64(2),
	}))
	require.NoError(t, err)
	text := getResultText(result)
	assert.Contains(t, text, "# Timeline: MGH (3 interactions)")
	assert.Contains(t, text, "- 2026-03-09 **call** Follow-up")
	assert.Contains(t, text, "  CFO joined. Budget is approved.")
	assert.NotContains(t, text, "Sent deck")
	assert.Contains(t, text, "📊 Showing 2 of 3.")
	assert.Less(t, strings.Index(text, "Follow-up"), strings.Index(text, "Discovery"))

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"deal_id":      d.ID,
		"detail_level": "summary",
	}))
	require.NoError(t, err)
	text = getResultText(result)
	assert.Contains(t, text, "Sent deck")
	assert.NotContains(t, text, "CFO joined")
	assert.NotContains(t, text, "Showing")

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"deal_id":      d.ID,
		"detail_level": "full",
	}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "  CFO joined.\n  Budget is approved.")
}

func TestDealTimeline_UnknownDeal(t *testing.T) {
	store := newTestStore(t)
	tool := NewDealTimelineTool(store, newTestJournal(t, store))

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{"deal_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, isErrorResult(result))

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "'deal_id' is required")
}

// --- interaction_search ---

func TestInteractionSearch(t *testing.T) {
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	mgh := seedDeal(t, store, staleOutreach("MGH"))
	bay := seedDeal(t, store, staleOutreach("Baycrest"))

	logInteraction(t, journal, activity.Interaction{DealID: mgh.ID, Type: activity.TypeMeeting, Summary: "Pricing review", Details: "They compared us with Epic"})
	logInteraction(t, journal, activity.Interaction{DealID: bay.ID, Type: activity.TypeCall, Summary: "Epic integration questions"})

	tool := NewInteractionSearchTool(journal)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{"query": "epic"}))
	require.NoError(t, err)
	text := getResultText(result)
	assert.Contains(t, text, "Found 2 interactions:")
	assert.Contains(t, text, "(meeting) MGH - Pricing review")
	assert.Contains(t, text, "They compared us with Epic")
	assert.Contains(t, text, "(call) Baycrest - Epic integration questions")

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{"query": "epic", "type": "call"}))
	require.NoError(t, err)
	text = getResultText(result)
	assert.Contains(t, text, "Found 1 interactions:")
	assert.Contains(t, text, "deal: `"+bay.ID+"`")

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{"query": "procurement"}))
	require.NoError(t, err)
	assert.Equal(t, "No interactions found matching your query.", getResultText(result))
}

func TestInteractionSearch_UserErrors(t *testing.T) {
	store := newTestStore(t)
	tool := NewInteractionSearchTool(newTestJournal(t, store))

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{"query": "  "}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "'query' is required")

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{"query": "x", "type": "fax"}))
	require.NoError(t, err)
	assert.True(t, isErrorResult(result))
	assert.Contains(t, getResultText(result), "invalid interaction type")
}

// --- activity_recent and the bridge ---

func TestActivityRecent_Empty(t *testing.T) {
	store := newTestStore(t)
	tool := NewActivityRecentTool(newTestJournal(t, store))

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Equal(t, "No activity recorded yet.", getResultText(result))
}

func TestActivityBridge_RecordsLifecycle(t *testing.T) {
	freezeTime(t)
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	bridge := NewActivityBridge(journal, zaptest.NewLogger(t))

	create := NewDealCreateTool(store)
	create.SetObserver(bridge)
	update := NewDealUpdateTool(store)
	update.SetObserver(bridge)
	del := NewDealDeleteTool(store)
	del.SetObserver(bridge)
	ctx := context.Background()

	result, err := create.Handle(ctx, newRequest(map[string]interface{}{"organization": "MGH"}))
	require.NoError(t, err)
	require.False(t, isErrorResult(result))
	all, err := store.List(ctx, deals.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	id := all[0].ID

	// A field edit is not a stage move.
	_, err = update.Handle(ctx, newRequest(map[string]interface{}{"deal_id": id, "champion": "Dr. Lee"}))
	require.NoError(t, err)
	_, err = update.Handle(ctx, newRequest(map[string]interface{}{"deal_id": id, "stage": "qualify"}))
	require.NoError(t, err)
	_, err = update.Handle(ctx, newRequest(map[string]interface{}{"deal_id": id, "stage": "won"}))
	require.NoError(t, err)

	result, err = del.Handle(ctx, newRequest(map[string]interface{}{"deal_id": id}))
	require.NoError(t, err)
	require.False(t, isErrorResult(result))

	feed, err := journal.Recent(ctx, 0)
	require.NoError(t, err)
	var titles []string
	for _, e := range feed {
		titles = append(titles, e.Icon+" "+e.Title+" | "+e.Description)
	}
	assert.Equal(t, []string{
		"🗑️ Deal deleted: MGH | ",
		"🏆 MGH stage updated | qualify → won",
		"🚀 MGH stage updated | outreach → qualify",
		"🎯 Deal created: MGH | Starting in outreach",
	}, titles)

	recent := NewActivityRecentTool(journal)
	result, err = recent.Handle(ctx, newRequest(map[string]interface{}{"limit": float64(2)}))
	require.NoError(t, err)
	text := getResultText(result)
	assert.Contains(t, text, "# Recent Activity")
	assert.Contains(t, text, "🗑️ **Deal deleted: MGH**")
	assert.Contains(t, text, "🏆 **MGH stage updated** - qualify → won")
	assert.NotContains(t, text, "Deal created")
}

func TestDealDelete_WithObserverUnknownDeal(t *testing.T) {
	store := newTestStore(t)
	journal := newTestJournal(t, store)
	del := NewDealDeleteTool(store)
	del.SetObserver(NewActivityBridge(journal, nil))

	result, err := del.Handle(context.Background(), newRequest(map[string]interface{}{"deal_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, isErrorResult(result))

	feed, err := journal.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestNewActivityBridge_NilStore(t *testing.T) {
	assert.Nil(t, NewActivityBridge(nil, nil))
}

// --- pipeline_nudges with a journal ---

func TestPipelineNudges_UntouchedOutreach(t *testing.T) {
	freezeTime(t)
	store := newTestStore(t)
	journal := newTestJournal(t, store)

	fresh := staleOutreach("MGH")
	fresh.UpdatedAt = frozenNow.Add(-24 * time.Hour)
	d := seedDeal(t, store, fresh)

	tool := NewPipelineNudgesTool(store)
	tool.SetJournal(journal)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{}))
	require.NoError(t, err)
	text := getResultText(result)
	assert.Contains(t, text, "MGH in outreach but no interactions logged")
	assert.Contains(t, text, "Log first contact attempt or meeting")

	logInteraction(t, journal, activity.Interaction{DealID: d.ID, Summary: "Left a voicemail"})

	result, err = tool.Handle(context.Background(), newRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Nothing needs attention right now.")
}
