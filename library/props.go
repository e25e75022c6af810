package library

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Record files hold one flat string-to-string mapping each, one
// `key=value` pair per line. The format matches the .properties files
// the data directory historically contained: lines starting with # or
// ! are comments, blank lines are ignored, and the first = splits key
// from value.

// encodeProps writes the mapping with keys sorted, preceded by an
// optional comment header, so repeated saves of the same record
// produce identical files.
func encodeProps(w io.Writer, comment string, p map[string]string) error {
	bw := bufio.NewWriter(w)
	if comment != "" {
		if _, err := fmt.Fprintf(bw, "# %s\n", comment); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", k, p[k]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// decodeProps reads a flat key-value mapping. Unparseable lines
// (no =) are skipped rather than failing the record; field-level
// defaulting is the caller's job.
func decodeProps(r io.Reader) (map[string]string, error) {
	p := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		p[strings.TrimSpace(key)] = value
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseIntOr parses an int from text, falling back to def when the
// text is malformed. Record loads must not abort on one bad field.
func parseIntOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
