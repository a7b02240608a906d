package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Corpus lines can be long (abstracts, full citation strings), so the
// scanner buffer is raised well past the bufio default.
const maxLineBytes = 4 * 1024 * 1024

// ReadTable parses the tab-separated file at path into a fresh Table,
// bypassing the cache. The first headerSkipRows lines are discarded, the
// next line names the columns, and every following line is a data row.
//
// Rows shorter than the header are padded with empty strings so every row
// has every column; a row with more fields than the header fails with
// ErrMalformedSource. Blank lines are skipped, matching how the corpora
// this serves are exported.
func ReadTable(path string, headerSkipRows int) (*Table, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for line < headerSkipRows && scanner.Scan() {
		line++
	}

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, path, err)
		}
		return nil, fmt.Errorf("%w: %s: no header row after skipping %d lines", ErrMalformedSource, path, headerSkipRows)
	}
	line++
	cols := strings.Split(trimEOL(scanner.Text()), "\t")

	var cells [][]string
	for scanner.Scan() {
		line++
		text := trimEOL(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) > len(cols) {
			return nil, fmt.Errorf("%w: %s: line %d has %d fields, header has %d",
				ErrMalformedSource, path, line, len(fields), len(cols))
		}
		if len(fields) < len(cols) {
			padded := make([]string, len(cols))
			copy(padded, fields)
			fields = padded
		}
		cells = append(cells, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, path, err)
	}

	t := newTable(path, cols, cells)
	log.Debugf("Loaded %s: %d rows, %d columns in %v", path, t.Len(), len(cols), time.Since(start))
	return t, nil
}

// trimEOL drops a trailing carriage return so CRLF exports parse the same
// as LF ones.
func trimEOL(s string) string {
	return strings.TrimSuffix(s, "\r")
}
