package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxDepth is the deepest array/object nesting Decode accepts, the same
// limit encoding/json applies.
const MaxDepth = 10000

var (
	// ErrTrailingData is returned when input holds more than one JSON value.
	ErrTrailingData = errors.New("jsonvalue: unexpected data after top-level value")

	// ErrMaxDepth is returned when nesting goes past MaxDepth.
	ErrMaxDepth = errors.New("jsonvalue: exceeded max depth")
)

// Parse decodes exactly one JSON document from data.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON document from r. Empty input yields
// io.ErrUnexpectedEOF; anything but whitespace after the document yields
// ErrTrailingData.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, err
	}

	switch _, err := dec.Token(); {
	case err == io.EOF:
		return v, nil
	case err != nil:
		return Value{}, err
	default:
		return Value{}, ErrTrailingData
	}
}

// FromAny converts a JSON-serializable Go value into a Value. A Value passed
// in is returned unchanged.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case *Value:
		if v == nil {
			return Null(), nil
		}
		return *v, nil
	}
	b, err := json.Marshal(x)
	if err != nil {
		return Value{}, err
	}
	return Parse(b)
}

// MarshalJSON encodes v, keeping object member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a single JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%%!jsonvalue(%v)", err)
	}
	return string(b)
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !json.Valid([]byte(v.text)) {
			return fmt.Errorf("jsonvalue: invalid number literal %q", v.text)
		}
		buf.WriteString(v.text)
	case KindString:
		return writeString(buf, v.text)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsonvalue: unknown kind %v", v.kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// decodeValue reads one value; depth counts the containers around it.
func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, ErrMaxDepth
		}
		switch t {
		case '[':
			return decodeArray(dec, depth+1)
		case '{':
			return decodeObject(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("jsonvalue: unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	if err := closeDelim(dec, ']'); err != nil {
		return Value{}, err
	}
	return Value{kind: KindArray, items: items}, nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	var b objectBuilder
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("jsonvalue: expected object key, got %v", tok)
		}
		v, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		b.set(key, v)
	}
	if err := closeDelim(dec, '}'); err != nil {
		return Value{}, err
	}
	return b.value(), nil
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("jsonvalue: expected %v, got %v", want, tok)
	}
	return nil
}
