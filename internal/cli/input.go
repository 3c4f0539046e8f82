package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tanglestat/pkg/errors"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Classify(fmt.Errorf("read stdin: %w", err))
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Classify(fmt.Errorf("read %s: %w", path, err))
	}
	return data, nil
}

// sourceName labels an input in logs and reports.
func sourceName(path string) string {
	if path == stdinName {
		return "stdin"
	}
	return path
}
