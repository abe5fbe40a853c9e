package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadWatchlist reads a watch-list file: one instrument code per non-blank
// line, "#" starts a comment, the first whitespace-delimited token is the
// code. Codes are zero-padded to 6 characters and deduplicated preserving
// first-seen order.
func LoadWatchlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watch-list: %w", err)
	}
	defer f.Close()

	return ParseWatchlist(f)
}

// ParseWatchlist parses watch-list content from a reader.
func ParseWatchlist(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	var codes []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code := strings.Fields(line)[0]
		for len(code) < 6 {
			code = "0" + code
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read watch-list: %w", err)
	}

	return codes, nil
}
