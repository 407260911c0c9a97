// Package auth checks operator credentials against the login table.
package auth

import (
	"context"
	"errors"
	"strings"

	u "github.com/araddon/gou"

	"github.com/hrutik5321/pms/internal/db"
)

const (
	LoginTable     = "login"
	UsernameColumn = "username"
	PasswordColumn = "password"
)

// ErrInvalidCredentials is returned when no login row matches.
var ErrInvalidCredentials = errors.New("auth: invalid username or password")

// Authenticate succeeds when a login row matches both username and password.
// Both are bound parameters; neither ever reaches the SQL text.
func Authenticate(ctx context.Context, p db.Provider, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidCredentials
	}
	stmt, err := db.SelectWhereEquals(LoginTable, db.Where(UsernameColumn, username).And(PasswordColumn, password))
	if err != nil {
		return err
	}
	t, err := db.Query(ctx, p, stmt)
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		u.Infof("auth: rejected login for %q", username)
		return ErrInvalidCredentials
	}
	u.Infof("auth: %q logged in", username)
	return nil
}
