package dashboard

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/models"
	"github.com/Zachkp/folio/internal/tags"
)

// ExperienceStore is the part of the remote store used by ExperienceEditor.
type ExperienceStore interface {
	ListExperience(ctx context.Context) ([]models.Experience, error)
	CreateExperience(ctx context.Context, credential string, in models.ExperienceInput) (*models.Experience, error)
	UpdateExperience(ctx context.Context, credential, id string, in models.ExperienceInput) (*models.Experience, error)
	DeleteExperience(ctx context.Context, credential, id string) error
}

// ExperienceDraft is the detached, editable copy of an experience record.
type ExperienceDraft struct {
	Organization string
	Logo         string
	Website      string
	Tags         *tags.Set
	Roles        []models.Role
}

// NewExperienceDraft returns the create-mode defaults: one empty role, no tags.
func NewExperienceDraft() ExperienceDraft {
	return ExperienceDraft{
		Tags:  tags.NewSet(nil),
		Roles: []models.Role{{}},
	}
}

func experienceDraftFrom(rec models.Experience) ExperienceDraft {
	return ExperienceDraft{
		Organization: rec.Organization,
		Logo:         rec.Logo,
		Website:      rec.Website,
		Tags:         tags.NewSet(rec.Tags),
		Roles:        slices.Clone(rec.Roles),
	}
}

// Input converts the draft into the request body.
func (d ExperienceDraft) Input() models.ExperienceInput {
	roles := slices.Clone(d.Roles)
	if roles == nil {
		roles = []models.Role{}
	}
	return models.ExperienceInput{
		Organization: d.Organization,
		Logo:         d.Logo,
		Website:      d.Website,
		Roles:        roles,
		Tags:         d.Tags.Items(),
	}
}

// AddRole appends an empty role.
func (d *ExperienceDraft) AddRole() {
	d.Roles = append(d.Roles, models.Role{})
}

// RemoveRole drops the role at index. It does not protect the last role;
// that rule belongs to the editor.
func (d *ExperienceDraft) RemoveRole(index int) error {
	if index < 0 || index >= len(d.Roles) {
		return ErrRoleIndex
	}
	d.Roles = slices.Delete(d.Roles, index, index+1)
	return nil
}

// SetField updates a top-level field by its wire name.
func (d *ExperienceDraft) SetField(name, value string) error {
	switch name {
	case "organization":
		d.Organization = value
	case "logo":
		d.Logo = value
	case "website":
		d.Website = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetRoleField updates a field of the role at index by its wire name.
func (d *ExperienceDraft) SetRoleField(index int, name, value string) error {
	if index < 0 || index >= len(d.Roles) {
		return ErrRoleIndex
	}
	r := &d.Roles[index]
	switch name {
	case "role":
		r.Role = value
	case "description":
		r.Description = value
	case "startDate":
		r.StartDate = value
	case "endDate":
		r.EndDate = value
	case "website":
		r.Website = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// ExperienceEditor is the experience tab's form controller.
type ExperienceEditor struct {
	guard
	store   ExperienceStore
	confirm Confirmer

	// List holds the records shown under the form.
	List *Collection[models.Experience]

	mu       sync.Mutex
	mode     Mode
	draft    ExperienceDraft
	errMsg   string
	busy     bool
	expanded tags.Expansion
}

// NewExperienceEditor returns an editor in create mode.
func NewExperienceEditor(store ExperienceStore, creds Credentials, nav Navigator, confirm Confirmer) *ExperienceEditor {
	return &ExperienceEditor{
		guard:   guard{creds: creds, nav: nav},
		store:   store,
		confirm: confirm,
		List:    NewCollection[models.Experience]("experience", "Failed to fetch experiences"),
		mode:    Create{},
		draft:   NewExperienceDraft(),
	}
}

// Load re-fetches the experience list.
func (e *ExperienceEditor) Load(ctx context.Context) error {
	return e.List.Load(ctx, e.store.ListExperience)
}

func (e *ExperienceEditor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Draft returns a snapshot of the draft as it would be submitted.
func (e *ExperienceEditor) Draft() models.ExperienceInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Input()
}

// TagInput returns the pending tag text.
func (e *ExperienceEditor) TagInput() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Tags.Input()
}

// Err returns the last submit or delete failure message, or "".
func (e *ExperienceEditor) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// Busy reports whether a submit or delete is in flight.
func (e *ExperienceEditor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

func (e *ExperienceEditor) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.SetField(name, value)
}

func (e *ExperienceEditor) SetRoleField(index int, name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.SetRoleField(index, name, value)
}

func (e *ExperienceEditor) AddRole() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.AddRole()
}

// RemoveRole removes the role at index unless it is the only one left.
func (e *ExperienceEditor) RemoveRole(index int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.draft.Roles) <= 1 {
		return false, nil
	}
	if err := e.draft.RemoveRole(index); err != nil {
		return false, err
	}
	return true, nil
}

func (e *ExperienceEditor) SetTagInput(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Tags.SetInput(text)
}

// AddTag commits the pending tag input.
func (e *ExperienceEditor) AddTag() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Tags.Commit()
}

func (e *ExperienceEditor) RemoveTag(tag string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Tags.Remove(tag)
}

// StartEdit loads a copy of rec into the draft and switches to edit mode.
func (e *ExperienceEditor) StartEdit(rec models.Experience) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Edit{ID: rec.ID}
	e.draft = experienceDraftFrom(rec)
}

// CancelEdit discards the draft and returns to create mode.
func (e *ExperienceEditor) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Create{}
	e.draft = NewExperienceDraft()
}

// Submit sends the draft: POST in create mode, PUT to the record in edit
// mode. On success the draft is reset and the list re-fetched; on failure the
// draft is left as it was.
func (e *ExperienceEditor) Submit(ctx context.Context) error {
	cred, err := e.credential()
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	e.errMsg = ""
	in := e.draft.Input()
	id, editing := editingID(e.mode)
	if err := in.Validate(); err != nil {
		e.errMsg = err.Error()
		e.mu.Unlock()
		return err
	}
	e.busy = true
	e.mu.Unlock()

	if editing {
		_, err = e.store.UpdateExperience(ctx, cred, id, in)
	} else {
		_, err = e.store.CreateExperience(ctx, cred, in)
	}

	e.mu.Lock()
	e.busy = false
	if err != nil {
		if api.IsUnauthorized(err) {
			e.errMsg = ErrUnauthorized.Error()
			e.mu.Unlock()
			return e.rejected()
		}
		e.errMsg = "Failed to save experience"
		e.mu.Unlock()
		return fmt.Errorf("save experience: %w", err)
	}
	e.mode = Create{}
	e.draft = NewExperienceDraft()
	e.mu.Unlock()

	if err := e.Load(ctx); err != nil {
		log.Printf("dashboard: experience saved but reload failed: %v", err)
	}
	return nil
}

// Delete removes the record id after the user confirms.
func (e *ExperienceEditor) Delete(ctx context.Context, id string) error {
	cred, err := e.credential()
	if err != nil {
		return err
	}
	if e.Busy() {
		return ErrBusy
	}
	if !e.confirm.Confirm("Delete this experience?") {
		return ErrNotConfirmed
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	e.busy = true
	e.errMsg = ""
	e.mu.Unlock()

	err = e.store.DeleteExperience(ctx, cred, id)

	e.mu.Lock()
	e.busy = false
	if err != nil {
		if api.IsUnauthorized(err) {
			e.errMsg = ErrUnauthorized.Error()
			e.mu.Unlock()
			return e.rejected()
		}
		e.errMsg = "Failed to delete"
		e.mu.Unlock()
		return fmt.Errorf("delete experience %s: %w", id, err)
	}
	if editID, ok := editingID(e.mode); ok && editID == id {
		e.mode = Create{}
		e.draft = NewExperienceDraft()
	}
	e.mu.Unlock()

	if err := e.Load(ctx); err != nil {
		log.Printf("dashboard: experience deleted but reload failed: %v", err)
	}
	return nil
}

// ToggleTags flips the tag-list expansion of record id.
func (e *ExperienceEditor) ToggleTags(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expanded.Toggle(id)
}

// TagOverflow returns how rec's tags are displayed in the list.
func (e *ExperienceEditor) TagOverflow(rec models.Experience) tags.Overflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return tags.Collapse(rec.Tags, e.expanded.IsExpanded(rec.ID))
}
