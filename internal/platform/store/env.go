package store

import (
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
)

// ConfigFromEnv reads every backend from its SERVICE_ scope; only postgres is required.
// A backend is enabled when its URL or address is set
func ConfigFromEnv(root config.Conf, app string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CH_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")
	natsCfg := root.Prefix("SERVICE_NATS_")

	chURL := chCfg.MayString("DBURL", "")
	rdsAddr := rdsCfg.MayString("ADDR", "")
	natsURL := natsCfg.MayString("URL", "")

	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:        true,
			URL:            pgCfg.MustString("DBURL"),
			MaxConns:       int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:    pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:         pgCfg.MayBool("LOG_SQL", false),
			Migrate:        pgCfg.MayBool("MIGRATE", true),
			ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
			Role:    chCfg.MayString("ROLE", app),
			Migrate: chCfg.MayBool("MIGRATE", true),
		},
		RDS: RedisConfig{
			Enabled:  rdsAddr != "",
			Addr:     rdsAddr,
			Password: rdsCfg.MayString("PASSWORD", ""),
			DB:       rdsCfg.MayInt("DB", 0),
			Prefix:   rdsCfg.MayString("PREFIX", "igmod:"),
		},
		NATS: NATSConfig{
			Enabled:        natsURL != "",
			URL:            natsURL,
			ConnectTimeout: natsCfg.MayDuration("CONNECT_TIMEOUT", 5*time.Second),
		},
	}
}
