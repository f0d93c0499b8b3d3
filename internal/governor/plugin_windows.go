//go:build windows

package governor

import "fmt"

// loadPlugin is unavailable on Windows: the standard library's plugin
// package only supports ELF/Mach-O targets.
func loadPlugin(path string) (Governor, error) {
	return nil, fmt.Errorf("governor: external plugins are not supported on windows")
}
