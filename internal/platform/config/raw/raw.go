// Package raw reads environment settings needed before the logger exists.
// It must not import logger; logger.FromEnv depends on it.
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed view over the environment, e.g. New().Prefix("LOG_").
type Conf struct{ prefix string }

func New() Conf { return Conf{} }

func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value of prefix+k, or def when unset or blank.
func (c Conf) Get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + k)); v != "" {
		return v
	}
	return def
}

// GetBool treats 1/true/yes/on as true; any other non-blank value is false.
func (c Conf) GetBool(k string, def bool) bool {
	switch strings.ToLower(c.Get(k, "")) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// GetInt accepts non-negative integers only; anything else yields def.
func (c Conf) GetInt(k string, def int) int {
	n, err := strconv.Atoi(c.Get(k, ""))
	if err != nil || n < 0 {
		return def
	}
	return n
}
