// Package ingest maps raw spreadsheet rows onto canonical comments
package ingest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

// Field is a canonical comment field fed from one or more sheet headers
type Field string

// Canonical fields
const (
	FieldExternalID         Field = "external_id"
	FieldUsername           Field = "username"
	FieldUserID             Field = "user_id"
	FieldProfileURL         Field = "profile_url"
	FieldText               Field = "text"
	FieldDate               Field = "date"
	FieldAggressionLabel    Field = "aggression_label"
	FieldAggressionColorHex Field = "aggression_color_hex"
	FieldStancePolarity     Field = "stance_polarity"
	FieldHarassmentType     Field = "harassment_type"
	FieldIsAttack           Field = "is_attack"
	FieldNotes              Field = "notes"
	FieldAggressionLevel    Field = "aggression_level"
)

// Fields lists every canonical field in a stable order
var Fields = []Field{
	FieldExternalID, FieldUsername, FieldUserID, FieldProfileURL, FieldText, FieldDate,
	FieldAggressionLabel, FieldAggressionColorHex, FieldStancePolarity, FieldHarassmentType,
	FieldIsAttack, FieldNotes, FieldAggressionLevel,
}

// Aliases maps a canonical field to the header spellings accepted for it, in priority order
type Aliases map[Field][]string

// DefaultAliases returns the header spellings seen in moderation exports so far
func DefaultAliases() Aliases {
	return Aliases{
		FieldExternalID:         {"Comment Id"},
		FieldUsername:           {"Username"},
		FieldUserID:             {"User Id"},
		FieldProfileURL:         {"Profile URL"},
		FieldText:               {"Comment Text"},
		FieldDate:               {"Date"},
		FieldAggressionLabel:    {"Etiqueta_Agresión", "Etiqueta_Agresion"},
		FieldAggressionColorHex: {"Color_Agresión_Hex", "Color_Agresion_Hex"},
		FieldStancePolarity:     {"Polaridad_Postura"},
		FieldHarassmentType:     {"Tipo_Acoso"},
		FieldIsAttack:           {"Es_Ataque"},
		FieldNotes:              {"Notas"},
		FieldAggressionLevel:    {"Nivel_Agresión", "nivel_agresion"},
	}
}

// Lookup returns the trimmed first non blank value among the spellings for f.
// A header that is present but blank does not shadow a later spelling
func (a Aliases) Lookup(row domain.Row, f Field) (string, bool) {
	v, ok := a.Raw(row, f)
	return strings.TrimSpace(v), ok
}

// Raw is Lookup without the trim, for cells whose exact original text matters
func (a Aliases) Raw(row domain.Row, f Field) (string, bool) {
	present := false
	for _, h := range a[f] {
		v, ok := row[h]
		if !ok {
			continue
		}
		present = true
		if strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", present
}

// Merge returns a copy of a with extra spellings tried first.
// Duplicate spellings keep their earliest position
func (a Aliases) Merge(extra Aliases) Aliases {
	out := make(Aliases, len(a))
	for _, f := range Fields {
		seen := map[string]struct{}{}
		var list []string
		for _, h := range append(append([]string(nil), extra[f]...), a[f]...) {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			list = append(list, h)
		}
		out[f] = list
	}
	return out
}

// LoadAliases reads a YAML file of field: [spellings] and merges it over the defaults
func LoadAliases(path string) (Aliases, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAliases(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases %s: %w", path, err)
	}
	return ParseAliases(b)
}

// ParseAliases decodes YAML alias overrides and merges them over the defaults
func ParseAliases(b []byte) (Aliases, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	known := make(map[Field]struct{}, len(Fields))
	for _, f := range Fields {
		known[f] = struct{}{}
	}
	extra := Aliases{}
	for k, v := range raw {
		f := Field(strings.TrimSpace(k))
		if _, ok := known[f]; !ok {
			return nil, fmt.Errorf("parse aliases: unknown field %q", k)
		}
		extra[f] = v
	}
	return DefaultAliases().Merge(extra), nil
}
