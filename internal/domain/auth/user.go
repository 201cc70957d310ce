package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ID is an identifier issued by the remote API. It accepts both JSON numbers
// and strings and is written back in the form it was read.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User is the identity returned by the remote API. Fields the front end does
// not model are kept in Extra so they survive a round-trip through storage.
type User struct {
	ID        ID
	FirstName string
	LastName  string
	Email     string
	Role      Role
	ManagerID *ID
	IsActive  bool

	Extra map[string]json.RawMessage
}

type userFields struct {
	ID        ID     `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ManagerID *ID    `json:"managerId"`
	IsActive  *bool  `json:"isActive"`
}

var knownUserKeys = []string{"id", "firstName", "lastName", "email", "role", "managerId", "isActive"}

// UnmarshalJSON implements json.Unmarshaler.
func (u *User) UnmarshalJSON(b []byte) error {
	var f userFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range knownUserKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		raw = nil
	}

	*u = User{
		ID:        f.ID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Role:      f.Role,
		ManagerID: f.ManagerID,
		IsActive:  f.IsActive == nil || *f.IsActive,
		Extra:     raw,
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+len(knownUserKeys))
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	out["firstName"] = u.FirstName
	out["lastName"] = u.LastName
	out["email"] = u.Email
	out["role"] = u.Role
	out["isActive"] = u.IsActive
	if u.ManagerID != nil {
		out["managerId"] = *u.ManagerID
	} else {
		out["managerId"] = nil
	}
	return json.Marshal(out)
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the uppercase first letters of first and last name.
func (u *User) Initials() string {
	if u == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if r, _ := utf8.DecodeRuneInString(part); r != utf8.RuneError {
			sb.WriteString(strings.ToUpper(string(r)))
		}
	}
	return sb.String()
}

// CanManageUsers reports whether the user sees the users section.
func (u *User) CanManageUsers() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleDevelopmentLead || u.Role == RoleWorkforceLead
}

// CanCreateProjects reports whether the "new project" quick action is offered.
func (u *User) CanCreateProjects() bool {
	return u.CanManageUsers() || (u != nil && u.Role == RoleDeveloper)
}
