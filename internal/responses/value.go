package responses

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/aliuyar1234/formkit/internal/apperrors"
)

// ErrInvalidValue is returned when an answer value is neither a string nor
// an array of strings.
var ErrInvalidValue = apperrors.BadRequest("answer value must be a string or an array of strings")

type valueKind int

const (
	kindAbsent valueKind = iota
	kindText
	kindList
)

// Value is an answer value: absent, a single text, or a list of choices.
// The zero Value is absent.
type Value struct {
	kind valueKind
	text string
	list []string
}

func TextValue(s string) Value {
	return Value{kind: kindText, text: s}
}

func ListValue(items []string) Value {
	return Value{kind: kindList, list: items}
}

// Text returns the text of a text value.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == kindText
}

// List returns the items of a list value.
func (v Value) List() ([]string, bool) {
	return v.list, v.kind == kindList
}

// Present reports whether an answer was actually given: a text with
// non-whitespace content or a list with at least one item.
func (v Value) Present() bool {
	switch v.kind {
	case kindText:
		return strings.TrimSpace(v.text) != ""
	case kindList:
		return len(v.list) > 0
	default:
		return false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindText:
		return json.Marshal(v.text)
	case kindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Value{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidValue
		}
		*v = TextValue(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []*string
		if err := json.Unmarshal(data, &items); err != nil {
			return ErrInvalidValue
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				return ErrInvalidValue
			}
			list = append(list, *item)
		}
		*v = ListValue(list)
		return nil
	default:
		return ErrInvalidValue
	}
}
