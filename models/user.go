package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// UserTableFields is the ordered column list of the users table.
var UserTableFields = []string{"username", "first_name", "last_name", "pwd"}

// User is an API user. The password is stored exactly as submitted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" db:"-"`

	Username  string `bun:"username,pk" db:"username" json:"username"`
	FirstName string `bun:"first_name,notnull" db:"first_name" json:"first_name"`
	LastName  string `bun:"last_name,notnull" db:"last_name" json:"last_name"`
	Pwd       string `bun:"pwd,notnull" db:"pwd" json:"pwd"`
}

// SQLTableFields returns UserTableFields joined for use in a statement.
func SQLTableFields() string {
	return strings.Join(UserTableFields, ", ")
}

// UnmarshalJSON decodes a user, rejecting payloads that omit any field.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Pwd       *string `json:"pwd"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, f := range []struct {
		name string
		v    *string
	}{
		{"username", raw.Username},
		{"first_name", raw.FirstName},
		{"last_name", raw.LastName},
		{"pwd", raw.Pwd},
	} {
		if f.v == nil {
			return fmt.Errorf("missing field `%s`", f.name)
		}
	}

	u.Username = *raw.Username
	u.FirstName = *raw.FirstName
	u.LastName = *raw.LastName
	u.Pwd = *raw.Pwd
	return nil
}
