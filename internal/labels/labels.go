// Package labels resolves model class indices to human-readable names.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JaimeStill/glimpse/internal/failure"
)

// Table is an ordered, 1-indexed list of labels. Line N of the source
// corresponds to class index N. A Table is read-only after construction.
type Table struct {
	entries []string
}

// New creates a Table from entries; entries[0] is class 1.
func New(entries []string) *Table {
	return &Table{entries: append([]string(nil), entries...)}
}

// Load reads a label list file, one label per line.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}
	return t, nil
}

// Parse reads labels from r, one per line. A trailing newline does not
// produce an empty final entry.
func Parse(r io.Reader) (*Table, error) {
	var entries []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		entries = append(entries, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Table{entries: entries}, nil
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.entries)
}

// Resolve returns the label for the 1-based class index.
func (t *Table) Resolve(class int) (string, error) {
	if class < 1 || class > len(t.entries) {
		return "", failure.New(
			failure.LabelLookup,
			"resolve label",
			fmt.Errorf("class %d outside table of %d labels", class, len(t.entries)),
		)
	}
	return t.entries[class-1], nil
}
