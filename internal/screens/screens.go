// Package screens holds the business screen set: sign-on, the main menu
// and the work-with displays. Each screen is a declarative Definition
// wired to the collaborators it reads from; the engine owns dispatch,
// containment and pagination.
package screens

import (
	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/collab"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/monitoring"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// Entry is the screen a fresh session lands on.
const Entry = "signon"

// Deps are the collaborators the screen set is wired to.
type Deps struct {
	Users    collab.Identity
	Broker   collab.Broker
	History  collab.History
	Sessions *session.Registry
	Metrics  *monitoring.Metrics
	Log      *logging.Logger
}

// Register builds every screen definition and adds it to the registry.
// An id collision is a configuration error and fails registration.
func Register(reg *screen.Registry, cat *catalog.Catalog, d Deps) error {
	defs := []*screen.Definition{
		signOn(cat, d),
		changePassword(cat, d),
		mainMenu(cat, d),
		workActiveJobs(cat, d),
		workJobQueues(cat, d),
		workUserProfiles(cat, d),
		createUserProfile(cat, d),
		systemStatus(cat, d),
		historyLog(cat, d),
		submitJob(cat, d),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// recordSignOn feeds the sign-on counter when metrics are wired.
func (d Deps) recordSignOn(result string) {
	if d.Metrics != nil {
		d.Metrics.RecordSignOn(result)
	}
}

// recordJobSubmitted feeds the job counter when metrics are wired.
func (d Deps) recordJobSubmitted() {
	if d.Metrics != nil {
		d.Metrics.IncJobsSubmitted()
	}
}
