// Package auth is the identity collaborator. Credentials are stored and
// compared in cleartext against records in the key-value store — this
// faithfully models a simulator with no real security, not an
// authentication system.
package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rxhall/papertrade/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// record is a registration entry as persisted under the "users" key.
type record struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	JoinedAt string `json:"joinedAt"`
}

// User is the sanitized profile handed to callers; it never carries the
// password.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	JoinedAt string `json:"joinedAt"`
}

// Service reads and writes registration records through the store gateway.
type Service struct {
	st store.Store
}

func NewService(st store.Store) *Service {
	return &Service{st: st}
}

// Register creates a new user. Emails are unique, case-insensitively.
func (s *Service) Register(email, password, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, fmt.Errorf("register: %w", ErrInvalidCredentials)
	}

	users := s.load()
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return User{}, fmt.Errorf("register: %w: %s", ErrEmailTaken, email)
		}
	}

	rec := record{
		ID:       uuid.New().String(),
		Email:    email,
		Name:     name,
		Password: password,
		JoinedAt: time.Now().UTC().Format(time.RFC3339),
	}
	users = append(users, rec)

	if err := store.SaveJSON(s.st, store.KeyUsers, users); err != nil {
		return User{}, fmt.Errorf("register: persist users: %w", err)
	}
	return sanitize(rec), nil
}

// Login returns the sanitized profile on a plaintext match, or a not-found
// failure. The caller only needs success/failure plus the profile.
func (s *Service) Login(email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	for _, u := range s.load() {
		if strings.EqualFold(u.Email, email) && u.Password == password {
			return sanitize(u), nil
		}
	}
	return User{}, ErrInvalidCredentials
}

func (s *Service) load() []record {
	var users []record
	if _, err := store.LoadJSON(s.st, store.KeyUsers, &users); err != nil {
		log.Printf("auth: load users: %v", err)
	}
	return users
}

func sanitize(r record) User {
	return User{ID: r.ID, Email: r.Email, Name: r.Name, JoinedAt: r.JoinedAt}
}
