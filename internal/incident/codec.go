package incident

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The flat codec reads and writes single-line JSON objects whose values are
// scalars (strings, numbers, booleans, null). It is not a general JSON
// parser: objects or arrays nested inside a value are rejected.

var (
	// ErrNotObject is returned when the input is not a single JSON object.
	ErrNotObject = errors.New("flat codec: not a JSON object")
	// ErrNested is returned when a field value is an object or an array.
	ErrNested = errors.New("flat codec: nested value not supported")
	// ErrWrongType is returned when a field holds a scalar of a different kind.
	ErrWrongType = errors.New("flat codec: wrong value type")
)

// Fields holds the raw scalar values of one flat JSON object by key.
type Fields map[string]json.RawMessage

// ParseFlat parses text as one flat JSON object.
// The first occurrence of a duplicated key wins.
func ParseFlat(text string) (Fields, error) {
	dec := json.NewDecoder(strings.NewReader(text))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	fields := make(Fields)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("flat codec: failed to read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("flat codec: unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("flat codec: failed to read value for %q: %w", key, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
			return nil, fmt.Errorf("%w: key %q", ErrNested, key)
		}
		if _, seen := fields[key]; !seen {
			fields[key] = raw
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("flat codec: unterminated object: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("flat codec: trailing data after object")
	}

	return fields, nil
}

// Int returns the integer stored under key, or nil if the key is absent or null.
func (f Fields) Int(key string) (*int, error) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrWrongType, key)
	}
	return &n, nil
}

// String returns the string stored under key, or nil if the key is absent or null.
func (f Fields) String(key string) (*string, error) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	if len(raw) == 0 || raw[0] != '"' {
		return nil, fmt.Errorf("%w: %q is not a string", ErrWrongType, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("flat codec: bad string for %q: %w", key, err)
	}
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// SplitArray splits a top-level JSON array into the raw text of its elements.
// Every element must be an object.
func SplitArray(text string) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, fmt.Errorf("flat codec: expected JSON array: %w", err)
	}

	out := make([]string, 0, len(elems))
	for i, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) == 0 || e[0] != '{' {
			return nil, fmt.Errorf("%w: array element %d", ErrNotObject, i)
		}
		out = append(out, string(e))
	}
	return out, nil
}

// Encoder writes a flat JSON object one field at a time, in call order.
type Encoder struct {
	buf    bytes.Buffer
	fields int
}

// String appends a string field.
func (e *Encoder) String(key, value string) {
	e.key(key)
	writeString(&e.buf, value)
}

// Int appends an integer field.
func (e *Encoder) Int(key string, value int) {
	e.key(key)
	e.buf.WriteString(strconv.Itoa(value))
}

// Bytes returns the encoded object.
func (e *Encoder) Bytes() []byte {
	out := make([]byte, 0, e.buf.Len()+2)
	out = append(out, '{')
	out = append(out, e.buf.Bytes()...)
	return append(out, '}')
}

func (e *Encoder) key(key string) {
	if e.fields > 0 {
		e.buf.WriteByte(',')
	}
	e.fields++
	writeString(&e.buf, key)
	e.buf.WriteByte(':')
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode only fails for unsupported types; a string is always supported.
	_ = enc.Encode(s)
	// drop the newline Encode appends
	buf.Truncate(buf.Len() - 1)
}
