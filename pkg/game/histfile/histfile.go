// Package histfile stores console history as a plain text file, one entry
// per line. It plugs into the engine through the load/save hooks; the
// engine never touches the filesystem itself.
package histfile

import (
	"fmt"
	"os"
	"strings"

	"darkconsole/pkg/engine/console"
)

// Hooks returns load/save functions bound to path. The load hook treats a
// missing file as empty history; the save hook truncates to maxEntries,
// newest kept.
func Hooks(path string) (console.LoadFunc, console.SaveFunc) {
	load := func() ([]string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var entries []string
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				entries = append(entries, line)
			}
		}
		return entries, nil
	}

	save := func(entries []string, maxEntries int) error {
		if len(entries) > maxEntries {
			entries = entries[len(entries)-maxEntries:]
		}
		var sb strings.Builder
		for _, e := range entries {
			sb.WriteString(e)
			sb.WriteByte('\n')
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}

	return load, save
}
