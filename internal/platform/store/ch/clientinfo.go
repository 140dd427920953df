package ch

import (
	"cmp"
	"os"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/maurolguin1/ig-moderation/internal/core/version"
)

// ClientInfo tags every query with the app, role and build so they can be told apart in system.query_log
func ClientInfo(role, app string) clickhouse.ClientInfo {
	bi := version.Info()
	host, _ := os.Hostname()

	var ci clickhouse.ClientInfo
	for _, p := range [][2]string{
		{cmp.Or(strings.TrimSpace(app), bi.Service), bi.Version},
		{"role", role},
		{"commit", bi.Commit},
		{"go", bi.Go},
		{"host", host},
	} {
		v := strings.TrimSpace(p[1])
		if v == "" {
			v = "-"
		}
		ci.Products = append(ci.Products, struct{ Name, Version string }{p[0], v})
	}
	return ci
}
