package service

import (
	"io"
	"strings"

	"github.com/maurolguin1/ig-moderation/internal/adapters/sheet"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

// LogHeaders is the header line of a job log download
var LogHeaders = []string{"line_no", "comment_id", "reason", "sanitized_changed"}

// WriteLogCSV writes entries one per line; reasons are flattened to a single line
func WriteLogCSV(w io.Writer, entries []domain.LogEntry) error {
	t := sheet.Table{Title: "import log", Headers: LogHeaders, Rows: make([][]any, 0, len(entries))}
	for _, e := range entries {
		changed := "0"
		if e.SanitizedChanged {
			changed = "1"
		}
		t.Rows = append(t.Rows, []any{
			e.LineNo,
			e.ExternalID,
			strings.ReplaceAll(strings.ReplaceAll(e.Reason, "\r\n", " "), "\n", " "),
			changed,
		})
	}
	return sheet.WriteCSV(w, t)
}
