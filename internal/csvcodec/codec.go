// Package csvcodec converts between a matrix of text cells and CSV text.
//
// The codec has no knowledge of what the cells mean. Encoding quotes a cell
// only when it contains a comma, a double quote or a line break, doubling
// any embedded quotes. Decoding accepts "\n", "\r\n" and a lone "\r" as
// record separators, keeps line breaks that appear inside quoted spans and
// drops blank lines. For any matrix of printable cells:
//
//	Decode(Encode(m)) == m
//
// The one exception is a row with no cells at all, which encodes to a blank
// line and is therefore dropped on the way back.
package csvcodec

import (
	"io"
	"strings"
)

const quoteChar = '"'

// Encode renders rows as CSV text. Rows are separated by "\n" and the
// result has no trailing line break.
func Encode(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, row)
	}
	return b.String()
}

// Write encodes rows and writes the text to w.
func Write(w io.Writer, rows [][]string) error {
	_, err := io.WriteString(w, Encode(rows))
	return err
}

func writeRow(b *strings.Builder, row []string) {
	// A lone blank cell would read back as a blank line.
	if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
		b.WriteString(quote(row[0]))
		return
	}
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EncodeCell(cell))
	}
}

// EncodeCell returns the CSV form of a single cell.
func EncodeCell(cell string) string {
	if strings.ContainsAny(cell, ",\"\r\n") {
		return quote(cell)
	}
	return cell
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Decode parses CSV text into rows.
//
// Decoding never fails: a quote toggles quoted mode wherever it appears, a
// doubled quote inside a quoted span is a literal quote, and an unterminated
// quoted span runs to the end of the input.
func Decode(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
		quoted   bool // current record contained a quote
	)

	endRecord := func() {
		row = append(row, cell.String())
		cell.Reset()
		if quoted || !isBlank(row) {
			rows = append(rows, row)
		}
		row = nil
		quoted = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inQuotes && c == quoteChar && i+1 < len(text) && text[i+1] == quoteChar:
			cell.WriteByte(quoteChar)
			i++
		case c == quoteChar:
			inQuotes = !inQuotes
			quoted = true
		case inQuotes:
			cell.WriteByte(c)
		case c == ',':
			row = append(row, cell.String())
			cell.Reset()
		case c == '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRecord()
		case c == '\n':
			endRecord()
		default:
			cell.WriteByte(c)
		}
	}

	if len(row) > 0 || cell.Len() > 0 || quoted {
		endRecord()
	}
	return rows
}

// Read reads all of r and decodes it.
func Read(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(string(data)), nil
}

func isBlank(row []string) bool {
	return len(row) == 1 && strings.TrimSpace(row[0]) == ""
}
