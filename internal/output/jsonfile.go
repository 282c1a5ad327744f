package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// WriteJSONFile writes the report to path as indented JSON. An advisory
// sidecar lock serializes writers, so concurrent runs exporting to the same
// path cannot interleave their output.
func WriteJSONFile(path string, rep Report) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
