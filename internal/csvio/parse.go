package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Row is a single data row keyed by canonical field key (or the normalized
// header for unknown vendor columns).
type Row map[string]string

// Table is the decoded tabular view of one input file.
type Table struct {
	Format  Format
	Headers []string
	Rows    []Row
}

// ReadTable detects the file format and decodes every row into canonical-keyed
// maps. Detection failure is the one hard error; malformed data rows are
// dropped rather than aborting the file.
func ReadTable(data []byte) (*Table, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeByName(data, format.Encoding)
	if err != nil {
		return nil, fmt.Errorf("csvio: decode %s: %w", format.Encoding, err)
	}

	r := csv.NewReader(bytes.NewReader([]byte(decoded)))
	r.Comma = format.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rawHeader, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csvio: read header: %w", err)
	}

	headers := make([]string, len(rawHeader))
	for i, h := range rawHeader {
		key, _ := CanonicalKey(h)
		headers[i] = key
	}

	table := &Table{Format: format, Headers: headers}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		row := make(Row, len(headers))
		for i, key := range headers {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func decodeByName(data []byte, name string) (string, error) {
	for _, enc := range encodingCandidates {
		if enc.name == name {
			return decode(data, enc.charmap)
		}
	}
	return "", fmt.Errorf("csvio: unknown encoding %q", name)
}
