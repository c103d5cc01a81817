// Package envelope recovers well-formed JSON from the archive's entry
// format. Entries are not plain JSON: the originating tool wraps the
// payload with a byte-order mark and non-JSON metadata before and after
// the object. Recovery locates the first balanced brace span, honoring
// string and escape context, and parses only that span.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports that an entry's text could not yield a balanced
// JSON object. Callers treat it as a per-entry condition: skip and log,
// never abort the batch.
var ErrMalformed = errors.New("malformed envelope")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Extract returns the first balanced JSON object span in data. The span
// runs from the first '{' to the '}' that returns brace depth to zero,
// counting braces only outside string literals. A quote toggles string
// context unless escaped; a backslash inside a string escapes the next
// character.
func Extract(data []byte) ([]byte, error) {
	for bytes.HasPrefix(data, bom) {
		data = data[len(bom):]
	}

	start := bytes.IndexByte(data, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}

	depth := 0
	inString := false
	escape := false

	for i := start; i < len(data); i++ {
		c := data[i]
		if escape {
			escape = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escape = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return data[start : i+1], nil
			}
		}
	}

	return nil, fmt.Errorf("%w: unbalanced braces", ErrMalformed)
}

// Decode extracts the JSON object span from data and unmarshals it into a
// generic object. Every failure mode, including a parse error on the
// recovered span, reports ErrMalformed.
func Decode(data []byte) (map[string]interface{}, error) {
	span, err := Extract(data)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(span, &obj); err != nil {
		return nil, fmt.Errorf("%w: parse recovered span: %v", ErrMalformed, err)
	}
	return obj, nil
}
