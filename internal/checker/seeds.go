package checker

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ReadSeeds loads the list of pages to scan. A .txt file is read one
// URL per line; any other file is parsed as CSV and the first field
// of each row is taken. Blank entries are skipped and a leading UTF-8
// BOM is tolerated, so exports from spreadsheet tools work as-is.
func ReadSeeds(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening seed list: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		return readSeedLines(f)
	}
	return readSeedCSV(f)
}

func readSeedLines(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading seed list: %w", err)
	}
	return urls, nil
}

func readSeedCSV(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1 // seed files are often ragged; only field 0 matters

	var urls []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading seed CSV: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if u := strings.TrimSpace(row[0]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
