// Package csvimport reads the ERP catalog and bin layout exports and writes
// the stock-take CSV files that go back to the ERP.
//
// Exports arrive from Excel or the ERP in UTF-8 (with or without BOM) or
// Windows-1252, with comma, semicolon, tab or pipe delimiters and with
// loosely spelled headers. Everything here is tolerant: a bad row is
// dropped, never fatal.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrEmptyFile     = errors.New("uploaded file is empty")
	ErrMissingColumn = errors.New("required column not found")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns the file as UTF-8: BOM stripped, and Windows-1252
// transcoded when the bytes are not valid UTF-8.
func decodeText(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the candidate occurring most often, outside quotes,
// in the header line. Ties go to the earlier candidate; default is comma.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}
	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}
	best, bestN := ',', 0
	for _, c := range delimiterCandidates {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

// readTable decodes, sniffs and parses r into a header row and data rows.
func readTable(r io.Reader) ([]string, [][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, ErrEmptyFile
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, nil, err
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, nil, err
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// headerIndex maps lower-cased, trimmed header names to column positions.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(cleanCell(h))
		if _, dup := idx[key]; !dup && key != "" {
			idx[key] = i
		}
	}
	return idx
}

// pick returns the column of the first candidate present, or -1.
func (h headerIndex) pick(candidates ...string) int {
	for _, c := range candidates {
		if i, ok := h[strings.ToLower(c)]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return cleanCell(row[i])
}

// cleanCell trims whitespace including the NBSP Excel likes to leave behind.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}

var numberNoise = strings.NewReplacer(" ", "", ",", "", "\u00a0", "")

// parseAmount reads "1,234.56" style numbers; anything unparseable is zero.
func parseAmount(s string) decimal.Decimal {
	s = numberNoise.Replace(cleanCell(s))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
