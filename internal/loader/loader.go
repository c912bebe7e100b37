package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/atikulmunna/tally/internal/model"
)

var (
	// ErrNotObject is returned when a file holds valid JSON whose top-level
	// value is not an object.
	ErrNotObject = errors.New("top-level JSON value is not an object")

	// ErrInvalidUTF8 is returned when a file is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// Load reads the file at path and decodes it as a single JSON object.
// Read and parse errors are returned to the caller unchanged in kind.
func Load(path string) (model.RawRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(raw)
}

// Decode parses data as a JSON object. Numbers are kept as json.Number so
// their literal text survives (1.0 stays 1.0, large integers stay exact).
func Decode(data []byte) (model.RawRecord, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("parse: %w", ErrInvalidUTF8)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("parse: unexpected data after top-level value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return model.RawRecord(obj), nil
}
