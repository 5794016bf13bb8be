// Package export renders bulk previews and post lists as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/soochol/postplan/internal/bulk"
	"github.com/soochol/postplan/internal/postplan"
)

const (
	BulkSheet  = "Bulk Preview"
	PostsSheet = "Posts"

	// ContentType is the MIME type of the written workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const stampLayout = "2006-01-02 15:04"

// WriteBulk writes one row per classified candidate of res, with times
// shown in loc.
func WriteBulk(w io.Writer, res bulk.Result, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]any, 0, len(res.Entries))
	for _, e := range res.Entries {
		local := e.At.In(loc)
		rows = append(rows, []any{e.Index, local.Format(stampLayout), local.Weekday().String(), string(e.Status), string(e.Reason)})
	}
	return write(w, BulkSheet, []any{"#", "Time", "Weekday", "Status", "Reason"}, rows)
}

// WritePosts writes one row per post with scheduled times shown in loc.
func WritePosts(w io.Writer, posts []*postplan.Post, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]any, 0, len(posts))
	for _, p := range posts {
		when := ""
		if p.ScheduledAt != nil {
			when = p.ScheduledAt.In(loc).Format(stampLayout)
		}
		platforms := make([]string, len(p.Platforms))
		for i, pl := range p.Platforms {
			platforms[i] = string(pl)
		}
		rows = append(rows, []any{p.ID, when, string(p.Status), strings.Join(platforms, ", "), p.Content})
	}
	return write(w, PostsSheet, []any{"ID", "Scheduled", "Status", "Platforms", "Content"}, rows)
}

func write(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
