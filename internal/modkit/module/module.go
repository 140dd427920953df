// Package module holds the module contract, port lookups and the registry of mounted modules
package module

import (
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
)

// Module mounts its routes under the API router and exposes a port set other modules can reuse
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
