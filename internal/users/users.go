// Package users implements the identity collaborator: AS/400-style user
// profiles with bcrypt password verification.
//
// Profiles live in memory, seeded with the standard system profiles at
// startup. QSECOFR is seeded with an expired password, which is what
// routes a fresh install's first sign-on through the change-password
// screen.
package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dk400/dk400/internal/collab"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/session"
)

// User classes.
const (
	ClassSecurityOfficer = "*SECOFR"
	ClassSystemOperator  = "*SYSOPR"
	ClassUser            = "*USER"
)

// Profile status values.
const (
	StatusEnabled  = "*ENABLED"
	StatusDisabled = "*DISABLED"
)

const maxNameLen = 10

type profile struct {
	collab.Profile
	hash []byte
}

// Manager holds the user profiles. It implements collab.Identity.
type Manager struct {
	mu       sync.Mutex
	profiles map[string]*profile
	log      *logging.Logger
}

// NewManager creates a manager seeded with the default system profiles.
func NewManager(log *logging.Logger) *Manager {
	m := &Manager{
		profiles: make(map[string]*profile),
		log:      log.Named("users"),
	}
	m.seedDefaults()
	return m
}

// seedDefaults ensures the standard system profiles exist. Passwords match
// the profile name, and QSECOFR starts expired.
func (m *Manager) seedDefaults() {
	defaults := []struct {
		name, class, desc string
		expired           bool
	}{
		{"QSECOFR", ClassSecurityOfficer, "Security Officer", true},
		{"QSYSOPR", ClassSystemOperator, "System Operator", false},
		{"QUSER", ClassUser, "Default User", false},
	}
	for _, d := range defaults {
		if err := m.create(d.name, d.name, d.class, d.desc); err != nil {
			m.log.Warn("seed profile failed", zap.String("user", d.name), zap.Error(err))
			continue
		}
		if d.expired {
			m.profiles[d.name].PasswordExpired = true
		}
	}
}

// Authenticate verifies credentials. Passwords are case-insensitive, as on
// the system this emulates.
func (m *Manager) Authenticate(_ context.Context, user, password string) (session.Identity, error) {
	name := normalize(user)
	if name == "" {
		return session.Identity{}, fmt.Errorf("%w: user is required", collab.ErrRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[name]
	if !ok {
		return session.Identity{}, fmt.Errorf("%w: user ID or password not valid", collab.ErrRejected)
	}
	if p.Status == StatusDisabled {
		return session.Identity{}, fmt.Errorf("%w: user profile %s is disabled", collab.ErrRejected, name)
	}

	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(strings.ToUpper(password))); err != nil {
		p.SignOnAttempts++
		return session.Identity{}, fmt.Errorf("%w: user ID or password not valid", collab.ErrRejected)
	}

	p.SignOnAttempts = 0
	p.LastSignOn = time.Now()

	return session.Identity{
		User:            name,
		Class:           p.Class,
		Authenticated:   true,
		PasswordExpired: p.PasswordExpired,
	}, nil
}

// ChangePassword sets a new password and clears the expired flag.
func (m *Manager) ChangePassword(_ context.Context, user, password string) error {
	name := normalize(user)
	if password == "" {
		return fmt.Errorf("%w: password is required", collab.ErrFailure)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[name]
	if !ok {
		return fmt.Errorf("%w: user %s not found", collab.ErrFailure, name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(strings.ToUpper(password)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", collab.ErrFailure, err)
	}
	p.hash = hash
	p.PasswordExpired = false
	m.log.Info("password changed", zap.String("user", name))
	return nil
}

// Profiles lists all user profiles sorted by name.
func (m *Manager) Profiles(_ context.Context) ([]collab.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]collab.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p.Profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Create adds a user profile.
func (m *Manager) Create(_ context.Context, name, password, class, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(name, password, class, description)
}

func (m *Manager) create(name, password, class, description string) error {
	name = normalize(name)
	if name == "" {
		return fmt.Errorf("%w: user name is required", collab.ErrFailure)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: user name must be %d characters or less", collab.ErrFailure, maxNameLen)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", collab.ErrFailure)
	}
	if _, exists := m.profiles[name]; exists {
		return fmt.Errorf("%w: user %s already exists", collab.ErrFailure, name)
	}
	if class == "" {
		class = ClassUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(strings.ToUpper(password)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", collab.ErrFailure, err)
	}

	m.profiles[name] = &profile{
		Profile: collab.Profile{
			Name:        name,
			Class:       class,
			Status:      StatusEnabled,
			Description: description,
			Created:     time.Now(),
		},
		hash: hash,
	}
	return nil
}

// Delete removes a user profile. System profiles cannot be deleted.
func (m *Manager) Delete(_ context.Context, name string) error {
	name = normalize(name)
	if isSystemProfile(name) {
		return fmt.Errorf("%w: cannot delete system user %s", collab.ErrFailure, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[name]; !ok {
		return fmt.Errorf("%w: user %s not found", collab.ErrFailure, name)
	}
	delete(m.profiles, name)
	m.log.Info("profile deleted", zap.String("user", name))
	return nil
}

// SetEnabled enables or disables a profile. QSECOFR cannot be disabled.
func (m *Manager) SetEnabled(_ context.Context, name string, enabled bool) error {
	name = normalize(name)
	if name == "QSECOFR" && !enabled {
		return fmt.Errorf("%w: cannot disable QSECOFR", collab.ErrFailure)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[name]
	if !ok {
		return fmt.Errorf("%w: user %s not found", collab.ErrFailure, name)
	}
	if enabled {
		p.Status = StatusEnabled
	} else {
		p.Status = StatusDisabled
	}
	return nil
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func isSystemProfile(name string) bool {
	switch name {
	case "QSECOFR", "QSYSOPR", "QUSER":
		return true
	}
	return false
}
