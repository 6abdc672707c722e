package collab

import (
	"context"
	"errors"
	"time"

	"github.com/dk400/dk400/internal/session"
)

// ErrFailure wraps any external store or queue error. The engine surfaces
// it as an error-level message frame; the session and connection survive.
var ErrFailure = errors.New("collaborator failure")

// ErrRejected is returned by Authenticate for bad credentials or a
// disabled profile.
var ErrRejected = errors.New("sign-on rejected")

// Profile is one user profile as the screens see it.
type Profile struct {
	Name            string
	Class           string
	Status          string
	Description     string
	Created         time.Time
	LastSignOn      time.Time
	SignOnAttempts  int
	PasswordExpired bool
}

// Identity verifies credentials and manages user profiles.
type Identity interface {
	// Authenticate checks credentials and returns the signed-on identity.
	// Bad credentials and disabled profiles return ErrRejected.
	Authenticate(ctx context.Context, user, password string) (session.Identity, error)
	// ChangePassword sets a new password, clearing the expired flag.
	ChangePassword(ctx context.Context, user, password string) error
	Profiles(ctx context.Context) ([]Profile, error)
	Create(ctx context.Context, name, password, class, description string) error
	Delete(ctx context.Context, name string) error
	SetEnabled(ctx context.Context, name string, enabled bool) error
}

// Job is one unit of work known to the broker.
type Job struct {
	ID        string
	Name      string
	User      string
	Queue     string
	Status    string // JOBQ, HELD, ACTIVE, ENDED
	Command   string
	Submitted time.Time
}

// Queue is one job queue.
type Queue struct {
	Name      string
	Status    string // ACTIVE, HELD
	Jobs      int
	Held      int
	Subsystem string
}

// Broker executes submitted batch jobs.
type Broker interface {
	Submit(ctx context.Context, user, queue, command string, delay time.Duration) (Job, error)
	Jobs(ctx context.Context) ([]Job, error)
	Queues(ctx context.Context) ([]Queue, error)
	Hold(ctx context.Context, jobID string) error
	Release(ctx context.Context, jobID string) error
	End(ctx context.Context, jobID string) error
	HoldQueue(ctx context.Context, name string) error
	ReleaseQueue(ctx context.Context, name string) error
}

// Entry is one history log line.
type Entry struct {
	Time     time.Time
	Severity string
	Source   string
	Message  string
}

// History records and serves the system history log.
type History interface {
	Record(severity, source, message string)
	Entries() []Entry
}
