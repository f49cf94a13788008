// Package tags implements the tag-set editor shared by the experience and
// project forms, and the collapsed display of long tag lists.
package tags

import (
	"slices"
	"strconv"
	"strings"
)

// Set is an insertion-ordered set of tags plus the pending text input.
// Duplicate detection is an exact, case-sensitive match.
type Set struct {
	input string
	items []string
}

// NewSet returns a set holding a copy of items.
func NewSet(items []string) *Set {
	s := &Set{}
	s.Reset(items)
	return s
}

// SetInput replaces the pending text.
func (s *Set) SetInput(text string) { s.input = text }

// Input returns the pending text.
func (s *Set) Input() string { return s.input }

// Commit adds the pending text as a tag. The input is cleared whether or
// not a tag was added.
func (s *Set) Commit() bool {
	added := s.Add(s.input)
	s.input = ""
	return added
}

// Add appends the trimmed text unless it is empty or already present.
func (s *Set) Add(text string) bool {
	tag := strings.TrimSpace(text)
	if tag == "" || slices.Contains(s.items, tag) {
		return false
	}
	s.items = append(s.items, tag)
	return true
}

// Remove drops tag from the set.
func (s *Set) Remove(tag string) bool {
	i := slices.Index(s.items, tag)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Items returns a copy of the committed tags.
func (s *Set) Items() []string {
	return slices.Clone(s.items)
}

func (s *Set) Len() int { return len(s.items) }

// Reset replaces the committed tags with a copy of items and clears the input.
func (s *Set) Reset(items []string) {
	s.items = slices.Clone(items)
	if s.items == nil {
		s.items = []string{}
	}
	s.input = ""
}

// CollapsedLimit is the number of tags shown before the overflow control.
const CollapsedLimit = 4

// Overflow describes how a tag list is displayed.
type Overflow struct {
	Visible  []string
	Hidden   int  // tags beyond CollapsedLimit not currently shown
	Expanded bool // all tags shown and the list is long enough to collapse
}

// Collapse returns the display of tags given the record's expansion flag.
func Collapse(tags []string, expanded bool) Overflow {
	if len(tags) <= CollapsedLimit {
		return Overflow{Visible: tags}
	}
	if expanded {
		return Overflow{Visible: tags, Expanded: true}
	}
	return Overflow{Visible: tags[:CollapsedLimit], Hidden: len(tags) - CollapsedLimit}
}

// Toggleable reports whether the list has an expand or collapse control.
func (o Overflow) Toggleable() bool { return o.Hidden > 0 || o.Expanded }

// Label is the text of the overflow control: "+N" when collapsed,
// "Show less" when expanded, empty when there is no control.
func (o Overflow) Label() string {
	switch {
	case o.Hidden > 0:
		return "+" + strconv.Itoa(o.Hidden)
	case o.Expanded:
		return "Show less"
	}
	return ""
}

// Expansion tracks which records have their tag list expanded.
// It is view state only and never touches a draft.
type Expansion struct {
	ids map[string]bool
}

func (e *Expansion) IsExpanded(id string) bool { return e.ids[id] }

// Toggle flips the flag for id and returns the new value.
func (e *Expansion) Toggle(id string) bool {
	if e.ids == nil {
		e.ids = make(map[string]bool)
	}
	if e.ids[id] {
		delete(e.ids, id)
		return false
	}
	e.ids[id] = true
	return true
}

// IDs returns the expanded ids in sorted order.
func (e *Expansion) IDs() []string {
	ids := make([]string, 0, len(e.ids))
	for id := range e.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Expand marks every id as expanded.
func (e *Expansion) Expand(ids ...string) {
	for _, id := range ids {
		if !e.IsExpanded(id) {
			e.Toggle(id)
		}
	}
}
