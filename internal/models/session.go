package models

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// User is the identity returned by the identity API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnmarshalJSON accepts either `id` or `_id`, as a string or a number.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		MongoID  json.RawMessage `json:"_id"`
		Name     string          `json:"name"`
		Username string          `json:"username"`
		Email    string          `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.Name = raw.Name
	if u.Name == "" {
		u.Name = raw.Username
	}
	u.Email = raw.Email
	u.ID = flexibleID(raw.ID)
	if u.ID == "" {
		u.ID = flexibleID(raw.MongoID)
	}
	return nil
}

func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// DisplayName prefers the name, then the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session is an authenticated identity.
//
// Payload keeps the identity API login response verbatim so it can be persisted whole.
type Session struct {
	Token   string          `json:"token"`
	User    User            `json:"user"`
	Payload json.RawMessage `json:"-"`
}

// Clone returns a deep copy, or nil for a nil session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Payload = append(json.RawMessage(nil), s.Payload...)
	return &cp
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email_address"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the sign-up form. Only name, email and password are sent.
type Registration struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email_address"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"-" validate:"eq=true"`
}
