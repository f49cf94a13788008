// Package views holds the view state of the public portfolio pages.
// Nothing here talks to the network.
package views

import (
	"github.com/Zachkp/folio/internal/models"
	"github.com/Zachkp/folio/internal/tags"
)

// ShowMoreLimit is the number of items listed before "show more".
const ShowMoreLimit = 3

// List is a read-only list that reveals items beyond the first few on demand.
type List[T any] struct {
	items   []T
	showAll bool
}

// NewList wraps items.
func NewList[T any](items []T, showAll bool) List[T] {
	return List[T]{items: items, showAll: showAll}
}

// Visible returns the items currently listed.
func (l List[T]) Visible() []T {
	if l.showAll || len(l.items) <= ShowMoreLimit {
		return l.items
	}
	return l.items[:ShowMoreLimit]
}

// Hidden is the number of items behind "show more".
func (l List[T]) Hidden() int {
	if l.showAll || len(l.items) <= ShowMoreLimit {
		return 0
	}
	return len(l.items) - ShowMoreLimit
}

// HasToggle reports whether the list is long enough for a show more/less control.
func (l List[T]) HasToggle() bool { return len(l.items) > ShowMoreLimit }

func (l List[T]) ShowingAll() bool { return l.showAll }

// Toggle returns the list with show-all flipped.
func (l List[T]) Toggle() List[T] {
	l.showAll = !l.showAll
	return l
}

func (l List[T]) Len() int { return len(l.items) }

// ProjectCard is a project as displayed.
type ProjectCard struct {
	models.Project
	TagView tags.Overflow
}

// ExperienceCard is an experience as displayed: the most recent role (last
// in the list) up front, earlier roles behind a per-card toggle.
type ExperienceCard struct {
	models.Experience
	Latest      *models.Role
	Earlier     []models.Role
	ShowEarlier bool
	TagView     tags.Overflow
}

// State is the expansion state of the public page.
type State struct {
	AllProjects   bool
	AllExperience bool
	Tags          tags.Expansion // per record id
	Roles         tags.Expansion // per experience id
}

// Projects builds the project cards for st.
func Projects(recs []models.Project, st *State) List[ProjectCard] {
	cards := make([]ProjectCard, 0, len(recs))
	for _, p := range recs {
		cards = append(cards, ProjectCard{
			Project: p,
			TagView: tags.Collapse(p.Tags, st.Tags.IsExpanded(p.ID)),
		})
	}
	return NewList(cards, st.AllProjects)
}

// Experience builds the experience cards for st.
func Experience(recs []models.Experience, st *State) List[ExperienceCard] {
	cards := make([]ExperienceCard, 0, len(recs))
	for _, e := range recs {
		card := ExperienceCard{
			Experience:  e,
			ShowEarlier: st.Roles.IsExpanded(e.ID),
			TagView:     tags.Collapse(e.Tags, st.Tags.IsExpanded(e.ID)),
		}
		if n := len(e.Roles); n > 0 {
			latest := e.Roles[n-1]
			card.Latest = &latest
			card.Earlier = e.Roles[:n-1]
		}
		cards = append(cards, card)
	}
	return NewList(cards, st.AllExperience)
}
