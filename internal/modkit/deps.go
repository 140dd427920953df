// Package modkit provides module wiring and core deps
package modkit

import (
	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
)

// Deps holds core dependencies passed to modules
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse

	// Cache and Bus are optional; modules degrade to uncached, unannounced operation
	Cache store.Cache
	Bus   store.Bus
}

// NewDeps maps an opened store onto module deps. A nil store leaves every
// backend nil, which modules treat as disabled.
func NewDeps(cfg config.Conf, st *store.Store) Deps {
	d := Deps{Cfg: cfg, Log: *logger.Get()}
	if st != nil {
		d.PG, d.CH, d.Cache, d.Bus = st.PG, st.CH, st.Cache, st.Bus
	}
	return d
}
