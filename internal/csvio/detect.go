package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNoFormat means no delimiter/encoding combination produced a usable table.
var ErrNoFormat = errors.New("csvio: no delimiter/encoding combination yields more than one column")

// Format is a detected delimiter/encoding pair.
type Format struct {
	Delimiter rune
	Encoding  string
}

var delimiterCandidates = []rune{',', ';'}

// Vendor exports label the same byte layouts under several names. The aliases
// are kept so the trial order, and therefore detection, stays deterministic.
var encodingCandidates = []struct {
	name    string
	charmap *charmap.Charmap
}{
	{"utf-8", nil},
	{"latin-1", charmap.ISO8859_1},
	{"iso-8859-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
	{"cp1252", charmap.Windows1252},
}

// Detect tries each delimiter crossed with each encoding, in order, and accepts
// the first combination whose header line parses to more than one column. The
// >1 column guard rejects a wrong delimiter that would swallow the whole line
// into a single field.
func Detect(data []byte) (Format, error) {
	for _, delim := range delimiterCandidates {
		for _, enc := range encodingCandidates {
			decoded, err := decode(data, enc.charmap)
			if err != nil {
				continue
			}
			header, err := readHeader(decoded, delim)
			if err != nil {
				continue
			}
			if len(header) > 1 {
				return Format{Delimiter: delim, Encoding: enc.name}, nil
			}
		}
	}
	return Format{}, ErrNoFormat
}

func decode(data []byte, cm *charmap.Charmap) (string, error) {
	if cm == nil {
		// The UTF-8 candidate must reject invalid byte sequences, otherwise
		// Latin-1 content would be accepted with mangled accents.
		if !utf8.Valid(data) {
			return "", errors.New("csvio: invalid utf-8")
		}
		return string(data), nil
	}
	decoded, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func readHeader(decoded string, delim rune) ([]string, error) {
	r := csv.NewReader(bytes.NewReader([]byte(decoded)))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return header, err
}
