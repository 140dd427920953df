package module

import (
	"slices"
	"sync"
)

// process wide registry of mounted modules, filled while the API is composed
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register records a mounted module and its port set; a second call for name replaces the first
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// Names lists the registered modules in sorted order
func Names() []string {
	mu.RLock()
	out := make([]string, 0, len(reg))
	for name := range reg {
		out = append(out, name)
	}
	mu.RUnlock()
	slices.Sort(out)
	return out
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
