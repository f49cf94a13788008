package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Tab names a dashboard view.
type Tab string

const (
	TabExperience Tab = "experience"
	TabProjects   Tab = "projects"
)

// ParseTab accepts a tab name in any case.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabExperience:
		return TabExperience, nil
	case TabProjects:
		return TabProjects, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// Config wires a Dashboard.
type Config struct {
	Experience ExperienceStore
	Projects   ProjectStore
	Session    Credentials
	Navigator  Navigator
	Confirmer  Confirmer
}

// Dashboard is the admin panel: a session guard in front of two tabs.
type Dashboard struct {
	session Credentials
	nav     Navigator

	Experience *ExperienceEditor
	Projects   *ProjectEditor

	mu  sync.Mutex
	tab Tab
}

// New returns a dashboard on the experience tab.
func New(cfg Config) *Dashboard {
	return &Dashboard{
		session:    cfg.Session,
		nav:        cfg.Navigator,
		Experience: NewExperienceEditor(cfg.Experience, cfg.Session, cfg.Navigator, cfg.Confirmer),
		Projects:   NewProjectEditor(cfg.Projects, cfg.Session, cfg.Navigator, cfg.Confirmer),
		tab:        TabExperience,
	}
}

// Enter runs the session guard and loads the active tab. Without a stored
// credential it navigates to login and loads nothing.
func (d *Dashboard) Enter(ctx context.Context) error {
	if _, ok := d.session.Credential(); !ok {
		d.nav.ToLogin()
		return ErrAuthMissing
	}
	return d.load(ctx, d.Tab())
}

func (d *Dashboard) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// SwitchTab activates tab and re-fetches its list, even when it was
// already active.
func (d *Dashboard) SwitchTab(ctx context.Context, tab Tab) error {
	if tab != TabExperience && tab != TabProjects {
		return fmt.Errorf("unknown tab %q", tab)
	}
	d.mu.Lock()
	d.tab = tab
	d.mu.Unlock()
	return d.load(ctx, tab)
}

func (d *Dashboard) load(ctx context.Context, tab Tab) error {
	if tab == TabProjects {
		return d.Projects.Load(ctx)
	}
	return d.Experience.Load(ctx)
}

// Logout forgets the credential and navigates to login.
func (d *Dashboard) Logout() error {
	err := d.session.Clear()
	d.nav.ToLogin()
	return err
}

// Close discards results of loads still in flight.
func (d *Dashboard) Close() {
	d.Experience.List.Detach()
	d.Projects.List.Detach()
}
