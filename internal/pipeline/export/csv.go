// Package export renders the filtered board as a CSV report and archives it.
package export

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/platform/clock"
)

// ContentType is served with every report.
const ContentType = "text/csv; charset=utf-8"

// Header is the fixed column set of the report.
var Header = []string{"候選人ID", "姓名", "顧問", "職缺", "階段", "最新進度日期", "最新事件", "停留天數"}

// Filename names the report after the civil date it was generated on.
func Filename(d clock.Date) string {
	return "pipeline-report-" + d.String() + ".csv"
}

// Rows flattens the board's filtered cards into report rows, one per card.
func Rows(b board.Board) [][]string {
	items := b.Items()
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		var date, event string
		if item.LatestEvent != nil {
			date = item.LatestEvent.Date
			event = item.LatestEvent.Event
		}
		rows = append(rows, []string{
			item.Candidate.ID.String(),
			item.Candidate.Name,
			item.Consultant,
			item.TargetJob,
			item.Stage.String(),
			date,
			event,
			strconv.Itoa(item.IdleDays),
		})
	}
	return rows
}

// Write emits the header and rows. Every field is double-quoted with embedded
// quotes doubled, and records are separated by a bare "\n" with no trailing
// separator.
func Write(w io.Writer, rows [][]string) error {
	bw := bufio.NewWriter(w)
	writeRecord(bw, Header)
	for _, row := range rows {
		bw.WriteByte('\n')
		writeRecord(bw, row)
	}
	return bw.Flush()
}

// Render returns the complete report for b.
func Render(b board.Board) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, Rows(b))
	return buf.Bytes()
}

func writeRecord(w *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
}
