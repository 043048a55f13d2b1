package block

import (
	"bytes"
	"encoding/json"
)

// Payload is the data carried by a block. It holds compact JSON so the value
// survives any structural encoding exactly and hashes the same on every node.
type Payload []byte

// NewPayload converts the specified value into a payload.
func NewPayload(v any) (Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return Payload(data), nil
}

// MustPayload is like NewPayload but panics if the value can't be encoded.
// Intended for literals in tests and constants.
func MustPayload(v any) Payload {
	p, err := NewPayload(v)
	if err != nil {
		panic(err)
	}

	return p
}

// Decode unmarshals the payload into the specified value.
func (p Payload) Decode(v any) error {
	return json.Unmarshal(p.json(), v)
}

// Equal reports if two payloads hold the same bytes.
func (p Payload) Equal(other Payload) bool {
	return bytes.Equal(p, other)
}

// String implements the fmt.Stringer interface.
func (p Payload) String() string {
	return string(p.json())
}

// MarshalJSON implements the json.Marshaler interface.
func (p Payload) MarshalJSON() ([]byte, error) {
	return p.json(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. The raw value is
// compacted so whitespace added by a transport or an indenting encoder does
// not change the payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*p = nil
		return nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}

	*p = buf.Bytes()
	return nil
}

func (p Payload) json() []byte {
	if len(p) == 0 {
		return []byte("null")
	}

	return p
}
