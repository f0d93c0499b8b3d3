//go:build !windows

package governor

import (
	"fmt"
	"plugin"
)

// loadPlugin opens the shared object at path and resolves its
// NewGovernor symbol.
func loadPlugin(path string) (Governor, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("governor: open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup("NewGovernor")
	if err != nil {
		return nil, fmt.Errorf("governor: plugin %s missing NewGovernor: %w", path, err)
	}
	factory, ok := sym.(func() Governor)
	if !ok {
		return nil, fmt.Errorf("governor: plugin %s NewGovernor has wrong signature", path)
	}
	return factory(), nil
}
