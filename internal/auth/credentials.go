// Package auth handles PIN login, the persisted session, the biometric
// flag and API tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Role controls what a user may change.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleBasic Role = "basic"
)

var (
	// ErrInvalidCredentials indicates an unknown user or a wrong PIN.
	ErrInvalidCredentials = errors.New("auth: usuario o PIN incorrecto")
	// ErrForbidden indicates the action requires the admin role.
	ErrForbidden = errors.New("auth: se requiere rol de administrador")
	// ErrNoSession indicates nobody is logged in.
	ErrNoSession = errors.New("auth: no hay sesión activa")
)

// User is one login identity.
type User struct {
	Name    string
	Role    Role
	PINHash []byte
}

// Directory resolves usernames to users.
type Directory struct {
	mu    sync.RWMutex
	users map[string]User
}

var builtinUsers = sync.OnceValue(func() []User {
	seed := []struct {
		name, pin string
		role      Role
	}{
		{"admin", "1989", RoleAdmin},
		{"lector", "1234", RoleBasic},
		{"johan", "1111", RoleBasic},
	}
	users := make([]User, 0, len(seed))
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.pin), bcrypt.MinCost)
		if err != nil {
			panic(fmt.Sprintf("hashing builtin pin: %v", err))
		}
		users = append(users, User{Name: s.name, Role: s.role, PINHash: hash})
	}
	return users
})

// NewDirectory returns the built-in users plus extra. Extra users replace
// built-ins with the same name.
func NewDirectory(extra ...User) *Directory {
	d := &Directory{users: make(map[string]User)}
	for _, u := range builtinUsers() {
		d.users[u.Name] = u
	}
	for _, u := range extra {
		d.Add(u)
	}
	return d
}

// Add registers or replaces a user.
func (d *Directory) Add(u User) {
	u.Name = normalize(u.Name)
	d.mu.Lock()
	d.users[u.Name] = u
	d.mu.Unlock()
}

// Authenticate checks a username and PIN. Both are trimmed and lowercased.
func (d *Directory) Authenticate(username, pin string) (User, error) {
	d.mu.RLock()
	u, ok := d.users[normalize(username)]
	d.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PINHash, []byte(normalize(pin))); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// HashPIN produces a bcrypt hash suitable for the config file.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(normalize(pin)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing pin: %w", err)
	}
	return string(hash), nil
}

// ParseRole accepts "admin" or "basic".
func ParseRole(s string) (Role, error) {
	switch Role(normalize(s)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleBasic, "":
		return RoleBasic, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
