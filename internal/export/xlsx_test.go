package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/soochol/postplan/internal/bulk"
	"github.com/soochol/postplan/internal/postplan"
)

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteBulk(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	res := bulk.Result{Entries: []bulk.Entry{
		{Index: 1, At: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Status: bulk.StatusScheduled},
		{Index: 2, At: time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), Status: bulk.StatusSkipped, Reason: bulk.SkipWeekend},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteBulk(&buf, res, tokyo))

	rows := readRows(t, &buf, BulkSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Time", "Weekday", "Status", "Reason"}, rows[0])
	// Trailing empty cells may be trimmed by the reader.
	require.GreaterOrEqual(t, len(rows[1]), 4)
	assert.Equal(t, []string{"1", "2024-05-03 09:00", "Friday", "scheduled"}, rows[1][:4])
	assert.Equal(t, []string{"2", "2024-05-04 09:00", "Saturday", "skipped", "weekend"}, rows[2])
}

func TestWritePosts(t *testing.T) {
	at := time.Date(2024, 5, 3, 9, 30, 0, 0, time.UTC)
	posts := []*postplan.Post{
		{ID: "post-1", Content: "hello", Platforms: []postplan.Platform{postplan.PlatformTwitter, postplan.PlatformLinkedIn}, ScheduledAt: &at, Status: postplan.PostScheduled},
		{ID: "post-2", Content: "draft", Platforms: []postplan.Platform{postplan.PlatformMastodon}, Status: postplan.PostDraft},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePosts(&buf, posts, nil))

	rows := readRows(t, &buf, PostsSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"post-1", "2024-05-03 09:30", "scheduled", "twitter, linkedin", "hello"}, rows[1])
	assert.Equal(t, []string{"post-2", "", "draft", "mastodon", "draft"}, rows[2])
}
