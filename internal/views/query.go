package views

import "net/url"

// Sections that can be expanded with "show more".
const (
	SectionProjects   = "projects"
	SectionExperience = "experience"
)

// ParseState reads page state from a query string:
// all=<section>, tags=<record id>, roles=<experience id>, each repeatable.
func ParseState(q url.Values) *State {
	st := &State{}
	for _, s := range q["all"] {
		switch s {
		case SectionProjects:
			st.AllProjects = true
		case SectionExperience:
			st.AllExperience = true
		}
	}
	st.Tags.Expand(q["tags"]...)
	st.Roles.Expand(q["roles"]...)
	return st
}

// Query encodes st back into a query string.
func (st *State) Query() url.Values {
	q := url.Values{}
	if st.AllExperience {
		q.Add("all", SectionExperience)
	}
	if st.AllProjects {
		q.Add("all", SectionProjects)
	}
	for _, id := range st.Tags.IDs() {
		q.Add("tags", id)
	}
	for _, id := range st.Roles.IDs() {
		q.Add("roles", id)
	}
	return q
}

func (st *State) clone() *State {
	c := &State{AllProjects: st.AllProjects, AllExperience: st.AllExperience}
	c.Tags.Expand(st.Tags.IDs()...)
	c.Roles.Expand(st.Roles.IDs()...)
	return c
}

// ToggleSection returns the query with section's show-all flipped.
func (st *State) ToggleSection(section string) string {
	c := st.clone()
	switch section {
	case SectionProjects:
		c.AllProjects = !c.AllProjects
	case SectionExperience:
		c.AllExperience = !c.AllExperience
	}
	return encode(c)
}

// ToggleTags returns the query with record id's tag expansion flipped.
func (st *State) ToggleTags(id string) string {
	c := st.clone()
	c.Tags.Toggle(id)
	return encode(c)
}

// ToggleRoles returns the query with experience id's earlier roles flipped.
func (st *State) ToggleRoles(id string) string {
	c := st.clone()
	c.Roles.Toggle(id)
	return encode(c)
}

func encode(st *State) string {
	q := st.Query()
	if len(q) == 0 {
		return "?"
	}
	return "?" + q.Encode()
}
