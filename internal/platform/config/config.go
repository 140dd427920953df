// Package config reads service settings from environment variables.
// Every service owns a key namespace (API_, CORE_IMPORT_, PG_...) that a Conf
// view scopes lookups to.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
)

// Conf is a namespaced view over the environment.
type Conf struct{ prefix string }

// New returns the unscoped root view.
func New() Conf { return Conf{} }

// Prefix scopes the view further, e.g. New().Prefix("CORE_").Prefix("IMPORT_").
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value and whether it is non-empty.
func (c Conf) lookup(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(k)))
	return v, v != ""
}

// parse falls back to def on a missing key, and warns when the value does not parse.
func parse[T any](c Conf, k string, def T, fn func(string) (T, error), kind string, field func(*zerolog.Event) *zerolog.Event) T {
	s, ok := c.lookup(k)
	if !ok {
		return def
	}
	v, err := fn(s)
	if err != nil {
		field(logger.Get().Warn().Str("key", c.key(k)).Str("value", s)).Msgf("invalid %s; using default", kind)
		return def
	}
	return v
}

// MustString panics when the key is unset; used for settings with no sane default (PG_DBURL).
func (c Conf) MustString(k string) string {
	v, ok := c.lookup(k)
	if !ok {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

func (c Conf) MayString(k, def string) string {
	if v, ok := c.lookup(k); ok {
		return v
	}
	return def
}

func (c Conf) MayInt(k string, def int) int {
	return parse(c, k, def, strconv.Atoi, "int", func(e *zerolog.Event) *zerolog.Event { return e.Int("default", def) })
}

func (c Conf) MayFloat64(k string, def float64) float64 {
	f := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	return parse(c, k, def, f, "float", func(e *zerolog.Event) *zerolog.Event { return e.Float64("default", def) })
}

func (c Conf) MayBool(k string, def bool) bool {
	return parse(c, k, def, strconv.ParseBool, "bool", func(e *zerolog.Event) *zerolog.Event { return e.Bool("default", def) })
}

// MayDuration accepts Go duration syntax (250ms, 2s, 1h).
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return parse(c, k, def, time.ParseDuration, "duration", func(e *zerolog.Event) *zerolog.Event { return e.Dur("default", def) })
}

// MayCSV splits a comma list, dropping blank items. All-blank yields def.
func (c Conf) MayCSV(k string, def []string) []string {
	s, ok := c.lookup(k)
	if !ok {
		return def
	}
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it case-insensitively matches one of allowed.
// An unknown value is a misconfiguration and panics.
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := c.MayString(k, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
