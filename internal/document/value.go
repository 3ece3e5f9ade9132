package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes literal property values from {identity} references
type Kind int

const (
	Literal Kind = iota
	Reference
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Reference:
		return "reference"
	default:
		return "unknown"
	}
}

var markerPattern = regexp.MustCompile(`^\{([^{}]+)\}$`)

// Value is a single property value. For references Text holds the
// normalized target identity without braces.
type Value struct {
	Kind Kind
	Text string
}

// Lit builds a literal value
func Lit(text string) Value {
	return Value{Kind: Literal, Text: text}
}

// Ref builds a reference to the given identity
func Ref(identity string) Value {
	return Value{Kind: Reference, Text: Normalize(identity)}
}

// ParseValue trims raw and recognises the {identity} marker grammar
func ParseValue(raw string) Value {
	raw = strings.TrimSpace(raw)
	if m := markerPattern.FindStringSubmatch(raw); m != nil {
		return Ref(m[1])
	}

	return Lit(raw)
}

// IsMarker reports whether raw has the exact {identity} form
func IsMarker(raw string) bool {
	return markerPattern.MatchString(strings.TrimSpace(raw))
}

// IsReference reports whether the value links to another record
func (v Value) IsReference() bool {
	return v.Kind == Reference
}

// Raw returns the value as it is written in a document
func (v Value) Raw() string {
	if v.Kind == Reference {
		return "{" + v.Text + "}"
	}

	return v.Text
}

func (v Value) String() string {
	return v.Raw()
}

// Properties is an insertion-ordered map of normalized field name to value.
// The zero value is ready to use.
type Properties struct {
	keys   []string
	values map[string]Value
}

// NewProperties returns an empty property set
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

// Set stores value under key, keeping the key's original position when it
// already exists
func (p *Properties) Set(key string, value Value) {
	if p.values == nil {
		p.values = make(map[string]Value)
	}

	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}

	p.values[key] = value
}

// Get returns the value stored under key
func (p *Properties) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}

	v, ok := p.values[key]

	return v, ok
}

// Keys returns the field names in insertion order
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}

	out := make([]string, len(p.keys))
	copy(out, p.keys)

	return out
}

// Len returns the number of fields
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}

	return len(p.keys)
}

// Clone returns a deep copy
func (p *Properties) Clone() *Properties {
	out := NewProperties()
	if p == nil {
		return out
	}

	for _, k := range p.keys {
		out.Set(k, p.values[k])
	}

	return out
}

// Overlay copies every field of other into p; fields of other win
func (p *Properties) Overlay(other *Properties) {
	if other == nil {
		return
	}

	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

// MarshalJSON writes the fields as a JSON object in insertion order
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	if p != nil {
		for i, k := range p.keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}

			val, err := json.Marshal(p.values[k].Raw())
			if err != nil {
				return nil, err
			}

			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object, keeping key order. Strings are
// parsed with the marker grammar, numbers are kept verbatim, booleans become
// 1/0 and nulls are dropped.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties must be a JSON object")
	}

	*p = Properties{values: make(map[string]Value)}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		key := Normalize(tok.(string))

		tok, err = dec.Token()
		if err != nil {
			return err
		}

		switch v := tok.(type) {
		case string:
			p.Set(key, ParseValue(v))
		case json.Number:
			p.Set(key, Lit(v.String()))
		case bool:
			if v {
				p.Set(key, Lit("1"))
			} else {
				p.Set(key, Lit("0"))
			}
		case nil:
		default:
			return fmt.Errorf("property %q must be a scalar", key)
		}
	}

	_, err = dec.Token()

	return err
}
