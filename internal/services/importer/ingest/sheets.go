package ingest

import (
	"github.com/maurolguin1/ig-moderation/internal/adapters/sheet"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

// Sheets reads uploads with the sheet adapter and hands records to the coordinator
type Sheets struct {
	R sheet.Reader
}

var _ domain.SheetReader = Sheets{}

// Read implements domain.SheetReader
func (s Sheets) Read(name string, data []byte) ([]domain.Record, error) {
	recs, err := s.R.Read(name, data)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(recs))
	for i, r := range recs {
		out[i] = domain.Record{Line: r.Line, Fields: r.Fields}
	}
	return out, nil
}
