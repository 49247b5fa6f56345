// Package csvload reads the CSV files of a dataset folder, trying a list of
// text encodings in order until one decodes the file cleanly.
package csvload

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"brai/internal/models"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncodings is used when no encoding list is configured.
var DefaultEncodings = []string{"utf-8", "euc-kr"}

// aliases maps encoding names used by the data producers onto WHATWG labels.
var aliases = map[string]string{
	"utf-8-sig": "utf-8",
	"utf8":      "utf-8",
	"cp949":     "euc-kr",
	"ms949":     "euc-kr",
}

var replacementChar = []byte(string(utf8.RuneError))

// Table is a decoded CSV file.
type Table struct {
	Header   []string
	Rows     [][]string
	Encoding string
}

func lookup(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[label]; ok {
		label = alias
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// ValidateEncodings checks that every name resolves to a known encoding.
func ValidateEncodings(names []string) error {
	for _, name := range names {
		if _, err := lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Decode converts data to UTF-8 using the first encoding that yields no
// replacement characters. It returns the decoded text and the encoding used.
func Decode(data []byte, encodings []string) (string, string, bool) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	hadReplacement := bytes.Contains(data, replacementChar)
	for _, name := range encodings {
		enc, err := lookup(name)
		if err != nil {
			continue
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if !hadReplacement && bytes.Contains(out, replacementChar) {
			continue
		}
		text := strings.TrimPrefix(string(out), "\ufeff")
		return text, name, true
	}
	return "", "", false
}

// Parse decodes and parses the CSV content read from r. path is only used in errors.
func Parse(r io.Reader, path string, encodings []string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	text, used, ok := Decode(data, encodings)
	if !ok {
		return nil, &models.DecodeError{Path: path, Encodings: encodings}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty csv file", path)
	}

	header := make([]string, len(records[0]))
	for i, cell := range records[0] {
		header[i] = strings.TrimSpace(cell)
	}

	return &Table{
		Header:   header,
		Rows:     records[1:],
		Encoding: used,
	}, nil
}

// ReadFile opens path and parses it with Parse.
func ReadFile(path string, encodings []string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return Parse(file, path, encodings)
}

// Cell returns row[i] trimmed, or "" when the row is short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
