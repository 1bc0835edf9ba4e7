// Package verifier checks the worker's output container against the
// independently computed ground truth.
package verifier

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"tetherharness/internal/container"
	"tetherharness/internal/shared/logging"
)

// ErrMissingOutput is returned when the worker produced no part files.
var ErrMissingOutput = errors.New("verifier: no output container found")

// MismatchError reports a single output record diverging from ground truth.
type MismatchError struct {
	Key     string
	Got     int64
	Want    int64
	Unknown bool
}

func (e *MismatchError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("verifier: key %q (count %d) does not exist in ground truth", e.Key, e.Got)
	}
	return fmt.Sprintf("verifier: key %q: got count %d, want %d", e.Key, e.Got, e.Want)
}

// Verifier compares output records to ground truth. By default the check is
// asymmetric: every record in the output must match, but ground-truth keys
// absent from the output are not reported. Set RequireTotal to also demand
// that every ground-truth key appears.
type Verifier struct {
	RequireTotal bool
	Logger       logging.Logger
}

func New(logger logging.Logger) *Verifier {
	return &Verifier{Logger: logger}
}

// Verify reads every part file under outputDir and asserts each (key, count)
// record against truth.
func (v *Verifier) Verify(outputDir string, truth map[string]int64) error {
	pattern := filepath.Join(outputDir, "part-*.avro")
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("verifier: globbing %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingOutput, pattern)
	}

	seen := make(map[string]bool, len(truth))
	records := 0

	for _, file := range files {
		pairs, err := container.ReadPairs(file)
		if err != nil {
			return err
		}

		for _, pair := range pairs {
			records++
			want, ok := truth[pair.Key]
			if !ok {
				return &MismatchError{Key: pair.Key, Got: pair.Value, Unknown: true}
			}
			if pair.Value != want {
				return &MismatchError{Key: pair.Key, Got: pair.Value, Want: want}
			}
			seen[pair.Key] = true
		}
	}

	if v.RequireTotal {
		for key := range truth {
			if !seen[key] {
				return fmt.Errorf("verifier: ground-truth key %q missing from output", key)
			}
		}
	}

	v.Logger.Info("Output verified", "files", len(files), "records", records)
	return nil
}
