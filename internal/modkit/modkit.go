// Package modkit builds API modules from shared deps and options
package modkit

import "github.com/maurolguin1/ig-moderation/internal/modkit/module"

// Module is what every service module's New returns
type Module = module.Module
