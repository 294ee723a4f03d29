package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrPayloadNotObject is returned when a payload is valid JSON but not an object.
var ErrPayloadNotObject = errors.New("payload must be a JSON object")

// Payload is the structured document attached to an encounter item.
// It is kept as the raw JSON text so that key order and nesting survive
// a store round trip unchanged.
type Payload json.RawMessage

// ParsePayload validates b as a JSON object and returns a compacted copy.
func ParsePayload(b []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrPayloadNotObject
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return Payload(buf.Bytes()), nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*p = Payload("{}")
		return nil
	}
	parsed, err := ParsePayload(b)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	return string(p), nil
}

// Scan implements sql.Scanner
func (p *Payload) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		*p = append(Payload(nil), v...)
	case string:
		*p = Payload(v)
	case nil:
		*p = Payload("{}")
	default:
		return fmt.Errorf("cannot scan %T into Payload", src)
	}
	return nil
}

// Text renders the payload as compact JSON with keys in their original
// order. Non-ASCII characters and HTML-significant characters are written
// literally, and \uXXXX escapes in the source are decoded.
func (p Payload) Text() (string, error) {
	if len(p) == 0 {
		return "{}", nil
	}

	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()

	type frame struct {
		object bool
		n      int
	}
	var (
		out   bytes.Buffer
		stack []frame
	)

	separate := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		switch {
		case top.object && top.n%2 == 1:
			out.WriteByte(':')
		case top.n > 0:
			out.WriteByte(',')
		}
		top.n++
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("render payload: %w", err)
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				separate()
				out.WriteByte(byte(v))
				stack = append(stack, frame{object: v == '{'})
			case '}', ']':
				stack = stack[:len(stack)-1]
				out.WriteByte(byte(v))
			}
		case string:
			separate()
			if err := writeString(&out, v); err != nil {
				return "", err
			}
		case json.Number:
			separate()
			out.WriteString(v.String())
		case bool:
			separate()
			if v {
				out.WriteString("true")
			} else {
				out.WriteString("false")
			}
		case nil:
			separate()
			out.WriteString("null")
		}
	}

	return out.String(), nil
}

func writeString(out *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
