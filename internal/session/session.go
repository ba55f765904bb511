// Package session holds the authenticated operator's identity and credential
// for the duration of the client process.
package session

import (
	"fmt"
	"strings"

	"github.com/railwatch/railwatch-go/internal/errors"
)

// Role is the operator's authorization level.
type Role string

const (
	// RoleAdmin has full lifecycle control including reopen and delete.
	RoleAdmin Role = "admin"
	// RoleStationMaster may resolve open defects but nothing further.
	RoleStationMaster Role = "stationmaster"
)

// ParseRole normalizes a configured role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStationMaster:
		return RoleStationMaster, nil
	default:
		return "", errors.Newf("unknown operator role: %q", s).
			Component("session").
			Category(errors.CategoryConfiguration).
			Context("role", s).
			Build()
	}
}

// Context carries the current operator's identity, role and bearer credential.
// It is created once after authentication, read by every mutating operation,
// and never mutated by the core. Close discards the credential at logout.
type Context struct {
	username   string
	role       Role
	credential string
}

// NewContext builds a session context for an authenticated operator.
func NewContext(username string, role Role, credential string) (*Context, error) {
	if credential == "" {
		return nil, errors.Newf("session requires a bearer credential").
			Component("session").
			Category(errors.CategoryConfiguration).
			Context("username", username).
			Build()
	}
	return &Context{username: username, role: role, credential: credential}, nil
}

// Username returns the operator's login name.
func (c *Context) Username() string { return c.username }

// Role returns the operator's role.
func (c *Context) Role() Role { return c.role }

// IsAdmin reports whether the operator holds the admin role.
func (c *Context) IsAdmin() bool { return c.role == RoleAdmin }

// Authorization returns the value for the Authorization header on
// authenticated calls.
func (c *Context) Authorization() string {
	return fmt.Sprintf("Bearer %s", c.credential)
}

// Close discards the held credential. The context must not be used afterwards.
func (c *Context) Close() {
	c.credential = ""
}
