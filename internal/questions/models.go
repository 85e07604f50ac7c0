package questions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the kind of input a question asks for.
type Type string

const (
	TypeText     Type = "text"
	TypeTextarea Type = "textarea"
	TypeRadio    Type = "radio"
	TypeCheckbox Type = "checkbox"
	TypeSelect   Type = "select"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeText, TypeTextarea, TypeRadio, TypeCheckbox, TypeSelect:
		return t, nil
	default:
		return "", fmt.Errorf("type must be one of: text, textarea, radio, checkbox, select (got: %q)", s)
	}
}

// HasOptions reports whether answers pick from a fixed option list.
func (t Type) HasOptions() bool {
	return t == TypeRadio || t == TypeCheckbox || t == TypeSelect
}

// Question is one ordered, typed entry of a form.
type Question struct {
	ID        uuid.UUID `json:"id"`
	FormID    uuid.UUID `json:"form_id"`
	Type      Type      `json:"type"`
	Label     string    `json:"label"`
	Required  bool      `json:"required"`
	Order     int       `json:"order"`
	Options   []string  `json:"options"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is a validated question definition. A nil Order appends on create
// and keeps the current position on update.
type Input struct {
	Type     Type
	Label    string
	Required bool
	Order    *int
	Options  []string
}
