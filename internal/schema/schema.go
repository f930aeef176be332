// Package schema validates inbound user payloads before anything is
// hashed or persisted.
//
// Payloads arrive as raw JSON fields so that the validator can tell
// apart a field that is absent, explicitly null, present with the wrong
// type, or present with an empty string. For partial updates the first
// two mean "leave unchanged" while the last two are real input.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxUsernameLen bounds usernames to the width of the username column.
const MaxUsernameLen = 100

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every offending field of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// CreateUser is a normalized create payload.
type CreateUser struct {
	Username string
	Password string
}

// PatchUser is a normalized partial-update payload. Nil means the field
// was absent or null and must not be applied.
type PatchUser struct {
	Username *string
	Password *string
}

// ValidateCreate checks a create payload: username and password are both
// required non-empty strings. Unknown fields are ignored.
func ValidateCreate(raw map[string]json.RawMessage) (CreateUser, error) {
	var out CreateUser
	var fields []FieldError

	for _, name := range []string{"username", "password"} {
		value, ferr := stringField(raw, name)
		if ferr != nil {
			fields = append(fields, *ferr)
			continue
		}
		if value == nil {
			fields = append(fields, FieldError{Field: name, Message: "field required"})
			continue
		}
		if *value == "" {
			fields = append(fields, FieldError{Field: name, Message: "must not be empty"})
			continue
		}
		switch name {
		case "username":
			out.Username = *value
		case "password":
			out.Password = *value
		}
	}

	if ferr := checkUsernameLen(out.Username); ferr != nil {
		fields = append(fields, *ferr)
	}
	if len(fields) > 0 {
		return CreateUser{}, &ValidationError{Fields: fields}
	}
	return out, nil
}

// ValidatePatch checks a partial-update payload: username and password
// are each optional strings. Absent and null fields are dropped; an
// empty payload is valid and changes nothing.
func ValidatePatch(raw map[string]json.RawMessage) (PatchUser, error) {
	var out PatchUser
	var fields []FieldError

	for _, name := range []string{"username", "password"} {
		value, ferr := stringField(raw, name)
		if ferr != nil {
			fields = append(fields, *ferr)
			continue
		}
		switch name {
		case "username":
			out.Username = value
		case "password":
			out.Password = value
		}
	}

	if out.Username != nil {
		if ferr := checkUsernameLen(*out.Username); ferr != nil {
			fields = append(fields, *ferr)
		}
	}
	if len(fields) > 0 {
		return PatchUser{}, &ValidationError{Fields: fields}
	}
	return out, nil
}

var jsonNull = []byte("null")

// stringField extracts field name as a string. It returns (nil, nil)
// when the field is absent or null, and a FieldError when the value is
// not a JSON string. Values are never coerced.
func stringField(raw map[string]json.RawMessage, name string) (*string, *FieldError) {
	value, ok := raw[name]
	if !ok || bytes.Equal(bytes.TrimSpace(value), jsonNull) {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, &FieldError{Field: name, Message: "must be a string"}
	}
	return &s, nil
}

func checkUsernameLen(username string) *FieldError {
	if len(username) > MaxUsernameLen {
		return &FieldError{
			Field:   "username",
			Message: fmt.Sprintf("must be at most %d characters", MaxUsernameLen),
		}
	}
	return nil
}
