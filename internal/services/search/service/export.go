package service

import (
	"bytes"
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/maurolguin1/ig-moderation/internal/adapters/sheet"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/ingest"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

// Content types of the export formats
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DefaultExportTitle names untitled exports
const DefaultExportTitle = "export"

// exportFields are written in this order under the first import spelling of each field,
// so an export can be imported again
var exportFields = []ingest.Field{
	ingest.FieldExternalID, ingest.FieldUsername, ingest.FieldUserID, ingest.FieldProfileURL,
	ingest.FieldText, ingest.FieldDate, ingest.FieldAggressionLabel, ingest.FieldAggressionLevel,
	ingest.FieldAggressionColorHex, ingest.FieldStancePolarity, ingest.FieldHarassmentType,
	ingest.FieldIsAttack, ingest.FieldNotes,
}

// VideoSourceHeader is the trailing export column
const VideoSourceHeader = "Video Source"

// ExportHeaders returns the export header row
func ExportHeaders() []string {
	aliases := ingest.DefaultAliases()
	out := make([]string, 0, len(exportFields)+1)
	for _, f := range exportFields {
		out = append(out, aliases[f][0])
	}
	return append(out, VideoSourceHeader)
}

// ExportRow flattens one comment in ExportHeaders order
func ExportRow(c domain.Comment) []any {
	attack := "no"
	if c.IsAttack {
		attack = "sí"
	}
	return []any{
		c.ExternalID, c.Username, c.UserID, c.ProfileURL,
		c.Text, c.OccurredAt, c.AggressionLabel, c.AggressionLevel,
		c.AggressionColorHex, c.StancePolarity, c.HarassmentType,
		attack, c.Notes, c.VideoSource,
	}
}

// ParseExportFormat accepts csv or xlsx in any case; blank means xlsx
func ParseExportFormat(s string) (domain.ExportFormat, error) {
	switch f := domain.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return domain.ExportXLSX, nil
	case domain.ExportCSV, domain.ExportXLSX:
		return f, nil
	}
	return "", perr.BadRequestf("unsupported export format %q", s)
}

// Export renders every comment matching in.Filter, up to the configured row cap
func (s *Service) Export(ctx context.Context, in domain.ExportInput) (file domain.ExportFile, err error) {
	format, err := ParseExportFormat(string(in.Format))
	if err != nil {
		return domain.ExportFile{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultExportTitle
	}

	ctx, span := tracer.Start(ctx, "search.Export", trace.WithAttributes(
		attribute.String("export.format", string(format)),
	))
	defer func() { endSpan(span, err) }()

	spec := query.BuildAll(in.Filter, s.Cfg.ExportMaxRows)
	items, total, err := s.find(ctx, spec)
	if err != nil {
		return domain.ExportFile{}, err
	}
	if total > len(items) {
		logger.C(ctx).Warn().
			Int("total", total).
			Int("rows", len(items)).
			Msg("search: export truncated at row cap")
	}

	t := sheet.Table{Title: title, Headers: ExportHeaders(), Rows: make([][]any, len(items))}
	for i, c := range items {
		t.Rows[i] = ExportRow(c)
	}

	var buf bytes.Buffer
	file = domain.ExportFile{Name: sheet.SheetName(title) + "." + string(format)}
	switch format {
	case domain.ExportCSV:
		file.ContentType = ContentTypeCSV
		err = sheet.WriteCSV(&buf, t)
	default:
		file.ContentType = ContentTypeXLSX
		err = sheet.WriteXLSX(&buf, t)
	}
	if err != nil {
		return domain.ExportFile{}, perr.Wrap(err, perr.ErrorCodeUnknown, "render export")
	}
	file.Body = buf.Bytes()
	span.SetAttributes(attribute.Int("export.rows", len(items)))
	return file, nil
}
