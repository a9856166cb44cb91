package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_FileReportAndSearch(t *testing.T) {
	location := filepath.Join(t.TempDir(), "report.jsonl")
	srv, err := New(location, nil)
	require.NoError(t, err)

	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	srv.Report("admin", ContextRun, "ran /hello", base)
	srv.Report("127.0.0.1", ContextState, "state /hello", base.Add(time.Minute))
	srv.Report("admin", ContextRun, "ran /bye", base.Add(2*time.Minute))
	require.NoError(t, srv.Close())

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"from":"admin","timestamp":"2024-01-02T03:04:05.000Z","context":"run","info":"ran /hello"}`, lines[0])

	testCases := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{name: "all", filter: Filter{}, expected: []string{"ran /hello", "state /hello", "ran /bye"}},
		{name: "context", filter: Filter{Context: ContextState}, expected: []string{"state /hello"}},
		{name: "from glob", filter: Filter{From: "127.*"}, expected: []string{"state /hello"}},
		{name: "limit keeps latest", filter: Filter{Limit: 2}, expected: []string{"state /hello", "ran /bye"}},
		{name: "after", filter: Filter{After: base.Add(30 * time.Second)}, expected: []string{"state /hello", "ran /bye"}},
		{name: "before", filter: Filter{Before: base.Add(30 * time.Second)}, expected: []string{"ran /hello"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := srv.Search(tc.filter)
			require.NoError(t, err)
			var actual []string
			for _, record := range records {
				actual = append(actual, record.Info)
			}
			assert.Equal(t, tc.expected, actual)
		})
	}

	_, err = srv.Search(Filter{Limit: MaxSearchLimit + 1})
	assert.Error(t, err)
}

func TestService_Off(t *testing.T) {
	srv, err := New(ModeOff, nil)
	require.NoError(t, err)
	srv.Report("x", ContextRun, "ignored", time.Time{})
	_, err = srv.Search(Filter{})
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.NoError(t, srv.Close())
}

func TestService_ReportAfterClose(t *testing.T) {
	location := filepath.Join(t.TempDir(), "report.jsonl")
	srv, err := New(location, nil)
	require.NoError(t, err)

	srv.Report("admin", ContextRun, "before close", time.Time{})
	require.NoError(t, srv.Close())
	assert.NotPanics(t, func() {
		srv.Report("admin", ContextRun, "after close", time.Time{})
	})
	require.NoError(t, srv.Close())

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
	assert.NotContains(t, string(data), "after close")
}
