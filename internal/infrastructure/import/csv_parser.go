package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// encodingProbeSize is how much of the file is inspected for a
// UTF-8 encoding check before any CSV parsing starts.
const encodingProbeSize = 4096

// CSVParser reads roster spreadsheets exported from office tools.
// Those files routinely carry a UTF-8 BOM, padded cells and ragged
// rows, so the parser strips the BOM, trims every cell and tolerates
// rows with a field count different from the header.
type CSVParser struct {
	r       *csv.Reader
	headers []string
	index   map[string]int
	line    int
}

// NewCSVParser wraps src and verifies it holds non-empty UTF-8 text.
func NewCSVParser(src io.Reader) (*CSVParser, error) {
	br := bufio.NewReader(src)

	probe, err := br.Peek(encodingProbeSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(probe) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(probe) {
		return nil, ErrInvalidEncoding
	}
	if len(probe) >= 3 && probe[0] == 0xEF && probe[1] == 0xBB && probe[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	r := csv.NewReader(br)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	return &CSVParser{r: r, index: make(map[string]int)}, nil
}

// ParseHeader consumes the first row and records the column layout.
func (p *CSVParser) ParseHeader() error {
	record, err := p.r.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.TrimSpace(h)
		p.headers[i] = name
		p.index[name] = i
	}
	p.line = 1
	return nil
}

// Headers returns the column names in file order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// CurrentRow is the 1-based line number of the row read last.
func (p *CSVParser) CurrentRow() int {
	return p.line
}

// Row is one data row keyed by header name. Cells beyond the header
// width are dropped, missing cells read as empty strings.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the trimmed cell value under the given header.
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty reports whether every cell in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next data row, or io.EOF when the file ends.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}
