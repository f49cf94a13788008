package dashboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/models"
	"github.com/Zachkp/folio/internal/tags"
)

// MaxImageSize caps a staged upload.
const MaxImageSize = 10 << 20

// ProjectStore is the part of the remote store used by ProjectEditor.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, credential string, in models.ProjectInput, image *api.ImageFile) (*models.Project, error)
	UpdateProject(ctx context.Context, credential, id string, in models.ProjectInput, image *api.ImageFile) (*models.Project, error)
	DeleteProject(ctx context.Context, credential, id string) error
}

// ProjectDraft is the detached, editable copy of a project record. Image is
// the stored URL; File, when set, replaces it on submit.
type ProjectDraft struct {
	Title       string
	Description string
	Image       string
	SourceURL   string
	LiveURL     string
	Tags        *tags.Set
	File        *api.ImageFile
	preview     string
}

// NewProjectDraft returns the create-mode defaults.
func NewProjectDraft() ProjectDraft {
	return ProjectDraft{Tags: tags.NewSet(nil)}
}

func projectDraftFrom(rec models.Project) ProjectDraft {
	return ProjectDraft{
		Title:       rec.Title,
		Description: rec.Description,
		Image:       rec.Image,
		SourceURL:   rec.SourceURL,
		LiveURL:     rec.LiveURL,
		Tags:        tags.NewSet(rec.Tags),
	}
}

// Input converts the scalar fields into the request body.
func (d ProjectDraft) Input() models.ProjectInput {
	return models.ProjectInput{
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Tags:        d.Tags.Items(),
		SourceURL:   d.SourceURL,
		LiveURL:     d.LiveURL,
	}
}

// SetField updates a field by its wire name.
func (d *ProjectDraft) SetField(name, value string) error {
	switch name {
	case "title":
		d.Title = value
	case "description":
		d.Description = value
	case "sourceUrl":
		d.SourceURL = value
	case "liveUrl":
		d.LiveURL = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Preview is the image to show next to the form: the staged file if one
// was chosen, else the stored URL.
func (d *ProjectDraft) Preview() string {
	if d.preview != "" {
		return d.preview
	}
	return d.Image
}

// ProjectEditor is the projects tab's form controller.
type ProjectEditor struct {
	guard
	store   ProjectStore
	confirm Confirmer

	// List holds the records shown under the form.
	List *Collection[models.Project]

	mu       sync.Mutex
	mode     Mode
	draft    ProjectDraft
	errMsg   string
	busy     bool
	expanded tags.Expansion
}

// NewProjectEditor returns an editor in create mode.
func NewProjectEditor(store ProjectStore, creds Credentials, nav Navigator, confirm Confirmer) *ProjectEditor {
	return &ProjectEditor{
		guard:   guard{creds: creds, nav: nav},
		store:   store,
		confirm: confirm,
		List:    NewCollection[models.Project]("projects", "Failed to fetch projects"),
		mode:    Create{},
		draft:   NewProjectDraft(),
	}
}

// Load re-fetches the project list.
func (p *ProjectEditor) Load(ctx context.Context) error {
	return p.List.Load(ctx, p.store.ListProjects)
}

func (p *ProjectEditor) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Draft returns a snapshot of the scalar draft fields.
func (p *ProjectEditor) Draft() models.ProjectInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Input()
}

// StagedImage returns the staged file, or nil.
func (p *ProjectEditor) StagedImage() *api.ImageFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.File
}

func (p *ProjectEditor) Preview() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Preview()
}

func (p *ProjectEditor) TagInput() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Tags.Input()
}

func (p *ProjectEditor) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

func (p *ProjectEditor) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *ProjectEditor) SetField(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.SetField(name, value)
}

func (p *ProjectEditor) SetTagInput(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.Tags.SetInput(text)
}

func (p *ProjectEditor) AddTag() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Tags.Commit()
}

func (p *ProjectEditor) RemoveTag(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Tags.Remove(tag)
}

// ChooseImage stages a local image for upload and sets the preview from its
// bytes. Nothing is sent until Submit.
func (p *ProjectEditor) ChooseImage(name string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return fmt.Errorf("read image %s: %w", name, err)
	}
	if len(data) > MaxImageSize {
		return fmt.Errorf("image %s exceeds %d bytes", name, MaxImageSize)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: %s is %s", ErrNotImage, name, mt.String())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.File = &api.ImageFile{Name: name, ContentType: mt.String(), Data: data}
	p.draft.preview = "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	return nil
}

// StartEdit loads a copy of rec into the draft and switches to edit mode.
// Any staged image is dropped along with the previous draft.
func (p *ProjectEditor) StartEdit(rec models.Project) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = Edit{ID: rec.ID}
	p.draft = projectDraftFrom(rec)
}

// CancelEdit discards the draft, staged image and preview.
func (p *ProjectEditor) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = Create{}
	p.draft = NewProjectDraft()
}

// Submit sends the draft as a multipart form: POST in create mode, PUT to
// the record in edit mode.
func (p *ProjectEditor) Submit(ctx context.Context) error {
	cred, err := p.credential()
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrBusy
	}
	p.errMsg = ""
	in := p.draft.Input()
	file := p.draft.File
	id, editing := editingID(p.mode)
	if err := in.Validate(); err != nil {
		p.errMsg = err.Error()
		p.mu.Unlock()
		return err
	}
	p.busy = true
	p.mu.Unlock()

	if editing {
		_, err = p.store.UpdateProject(ctx, cred, id, in, file)
	} else {
		_, err = p.store.CreateProject(ctx, cred, in, file)
	}

	p.mu.Lock()
	p.busy = false
	if err != nil {
		if api.IsUnauthorized(err) {
			p.errMsg = ErrUnauthorized.Error()
			p.mu.Unlock()
			return p.rejected()
		}
		p.errMsg = "Failed to save project"
		p.mu.Unlock()
		return fmt.Errorf("save project: %w", err)
	}
	p.mode = Create{}
	p.draft = NewProjectDraft()
	p.mu.Unlock()

	if err := p.Load(ctx); err != nil {
		log.Printf("dashboard: project saved but reload failed: %v", err)
	}
	return nil
}

// Delete removes the project id after the user confirms.
func (p *ProjectEditor) Delete(ctx context.Context, id string) error {
	cred, err := p.credential()
	if err != nil {
		return err
	}
	if p.Busy() {
		return ErrBusy
	}
	if !p.confirm.Confirm("Delete this project?") {
		return ErrNotConfirmed
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrBusy
	}
	p.busy = true
	p.errMsg = ""
	p.mu.Unlock()

	err = p.store.DeleteProject(ctx, cred, id)

	p.mu.Lock()
	p.busy = false
	if err != nil {
		if api.IsUnauthorized(err) {
			p.errMsg = ErrUnauthorized.Error()
			p.mu.Unlock()
			return p.rejected()
		}
		p.errMsg = "Failed to delete"
		p.mu.Unlock()
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if editID, ok := editingID(p.mode); ok && editID == id {
		p.mode = Create{}
		p.draft = NewProjectDraft()
	}
	p.mu.Unlock()

	if err := p.Load(ctx); err != nil {
		log.Printf("dashboard: project deleted but reload failed: %v", err)
	}
	return nil
}

func (p *ProjectEditor) ToggleTags(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded.Toggle(id)
}

func (p *ProjectEditor) TagOverflow(rec models.Project) tags.Overflow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return tags.Collapse(rec.Tags, p.expanded.IsExpanded(rec.ID))
}
