package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

// --- Test helpers ---

var frozenNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// freezeTime pins timeNow for the duration of the test.
func freezeTime(t *testing.T) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return frozenNow }
	t.Cleanup(func() { timeNow = orig })
}

func newTestStore(t *testing.T) *deals.SQLiteStore {
	t.Helper()
	s, err := deals.Open(t.TempDir(), "deals.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func seedDeal(t *testing.T, s deals.Store, d deals.Deal) *deals.Deal {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &d))
	return &d
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// brokenStore fails every call the way a closed database would.
type brokenStore struct{}

var errBroken = errors.New("database is closed")

func (brokenStore) Create(context.Context, *deals.Deal) error { return errBroken }
func (brokenStore) Get(context.Context, string) (*deals.Deal, error) {
	return nil, errBroken
}
func (brokenStore) List(context.Context, deals.ListOptions) ([]deals.Deal, error) {
	return nil, errBroken
}
func (brokenStore) Update(context.Context, string, deals.Patch) (*deals.Deal, bool, error) {
	return nil, false, errBroken
}
func (brokenStore) Delete(context.Context, string) error { return errBroken }
func (brokenStore) Close() error                         { return nil }
