// Package targets resolves the URL list handed to the pool.
package targets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hamed0406/sitechecker/internal/domain"
)

// Parse returns one target per non-blank line, skipping "#" comments.
func Parse(r io.Reader) ([]domain.Target, error) {
	var out []domain.Target
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, domain.Target(line))
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// Load reads a URL list file.
func Load(path string) ([]domain.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ts, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ts, nil
}

// FromArgs keeps positional URLs in order, dropping blank ones.
func FromArgs(args []string) []domain.Target {
	out := make([]domain.Target, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, domain.Target(a))
		}
	}
	return out
}
