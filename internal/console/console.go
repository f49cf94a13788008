// Package console is a line-oriented front-end for the admin dashboard.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Zachkp/folio/internal/dashboard"
	"github.com/Zachkp/folio/internal/models"
	"github.com/Zachkp/folio/internal/tags"
)

const help = `Commands:
  tab experience|projects     switch tab (always re-fetches)
  list                        show the current tab's records
  show                        show the draft
  new                         discard the draft and start a new record
  edit <id>                   load a record into the draft
  cancel                      leave edit mode
  set <field> <value>         set a draft field
  role add                    append an empty role (experience)
  role rm <n>                 remove role n (experience)
  role set <n> <field> <value>
  tag add <text>              add a tag
  tag rm <text>               remove a tag
  tags <id>                   expand or collapse a record's tags
  image <path>                stage an image file (projects)
  save                        submit the draft
  delete <id>                 delete a record
  logout
  quit`

// Console reads commands from in and writes to out.
type Console struct {
	in   *bufio.Scanner
	out  io.Writer
	dash *dashboard.Dashboard

	toLogin bool
}

// New wires a dashboard to the console. cfg's Navigator and Confirmer are
// replaced by the console's own.
func New(in io.Reader, out io.Writer, cfg dashboard.Config) *Console {
	c := &Console{in: bufio.NewScanner(in), out: out}
	cfg.Navigator = dashboard.NavigatorFunc(c.navigateToLogin)
	cfg.Confirmer = dashboard.ConfirmerFunc(c.confirm)
	c.dash = dashboard.New(cfg)
	return c
}

func (c *Console) navigateToLogin() { c.toLogin = true }

func (c *Console) confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	if !c.in.Scan() {
		return false
	}
	ans := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return ans == "y" || ans == "yes"
}

// Run enters the dashboard and processes commands until quit, logout, EOF,
// or a navigation to login.
func (c *Console) Run(ctx context.Context) error {
	defer c.dash.Close()

	if err := c.dash.Enter(ctx); err != nil {
		if errors.Is(err, dashboard.ErrAuthMissing) {
			fmt.Fprintln(c.out, "Not logged in. Run `folio login` first.")
			return err
		}
		// The list shows its own failure message; the console stays usable.
	}
	c.list()

	for {
		fmt.Fprintf(c.out, "%s> ", c.dash.Tab())
		if !c.in.Scan() {
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := c.exec(ctx, line); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if c.toLogin {
			fmt.Fprintln(c.out, "Session ended. Run `folio login` to continue.")
			return nil
		}
	}
}

func (c *Console) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Fprintln(c.out, help)
	case "tab":
		tab, err := dashboard.ParseTab(rest)
		if err != nil {
			return err
		}
		err = c.dash.SwitchTab(ctx, tab)
		c.list()
		return err
	case "list":
		c.list()
	case "show":
		c.show()
	case "new", "cancel":
		c.cancel()
		c.show()
	case "edit":
		return c.edit(rest)
	case "set":
		field, value, ok := strings.Cut(rest, " ")
		if !ok && field == "" {
			return errors.New("usage: set <field> <value>")
		}
		return c.setField(field, strings.TrimSpace(value))
	case "role":
		return c.role(rest)
	case "tag":
		return c.tag(rest)
	case "tags":
		c.toggleTags(rest)
		c.list()
	case "image":
		return c.image(rest)
	case "save":
		return c.save(ctx)
	case "delete":
		return c.delete(ctx, rest)
	case "logout":
		return c.dash.Logout()
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (c *Console) onProjects() bool { return c.dash.Tab() == dashboard.TabProjects }

func (c *Console) list() {
	if c.onProjects() {
		p := c.dash.Projects
		if msg := p.List.Err(); msg != "" {
			fmt.Fprintln(c.out, msg)
			return
		}
		items := p.List.Items()
		if len(items) == 0 {
			fmt.Fprintln(c.out, "No projects.")
		}
		for _, rec := range items {
			fmt.Fprintf(c.out, "[%s] %s%s\n", rec.ID, rec.Title, tagSuffix(p.TagOverflow(rec)))
		}
		return
	}

	e := c.dash.Experience
	if msg := e.List.Err(); msg != "" {
		fmt.Fprintln(c.out, msg)
		return
	}
	items := e.List.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No experience.")
	}
	for _, rec := range items {
		fmt.Fprintf(c.out, "[%s] %s (%d roles)%s\n", rec.ID, rec.Organization, len(rec.Roles), tagSuffix(e.TagOverflow(rec)))
	}
}

func tagSuffix(o tags.Overflow) string {
	if len(o.Visible) == 0 {
		return ""
	}
	s := " - " + strings.Join(o.Visible, ", ")
	if o.Hidden > 0 {
		s += " " + o.Label()
	}
	return s
}

func modeLabel(m dashboard.Mode) string {
	if e, ok := m.(dashboard.Edit); ok {
		return "editing " + e.ID
	}
	return "new"
}

func (c *Console) show() {
	if c.onProjects() {
		p := c.dash.Projects
		d := p.Draft()
		fmt.Fprintf(c.out, "Project (%s)\n", modeLabel(p.Mode()))
		fmt.Fprintf(c.out, "  title: %s\n  description: %s\n  sourceUrl: %s\n  liveUrl: %s\n", d.Title, d.Description, d.SourceURL, d.LiveURL)
		fmt.Fprintf(c.out, "  tags: %s\n", strings.Join(d.Tags, ", "))
		if img := p.StagedImage(); img != nil {
			fmt.Fprintf(c.out, "  image: %s (%s, %d bytes, staged)\n", img.Name, img.ContentType, len(img.Data))
		} else if d.Image != "" {
			fmt.Fprintf(c.out, "  image: %s\n", d.Image)
		}
		if msg := p.Err(); msg != "" {
			fmt.Fprintf(c.out, "  ! %s\n", msg)
		}
		return
	}

	e := c.dash.Experience
	d := e.Draft()
	fmt.Fprintf(c.out, "Experience (%s)\n", modeLabel(e.Mode()))
	fmt.Fprintf(c.out, "  organization: %s\n  logo: %s\n  website: %s\n", d.Organization, d.Logo, d.Website)
	fmt.Fprintf(c.out, "  tags: %s\n", strings.Join(d.Tags, ", "))
	for i, r := range d.Roles {
		fmt.Fprintf(c.out, "  role %d: %s | %s - %s | %s\n", i+1, r.Role, r.StartDate, r.EndDate, r.Description)
	}
	if msg := e.Err(); msg != "" {
		fmt.Fprintf(c.out, "  ! %s\n", msg)
	}
}

func (c *Console) cancel() {
	if c.onProjects() {
		c.dash.Projects.CancelEdit()
		return
	}
	c.dash.Experience.CancelEdit()
}

func (c *Console) edit(id string) error {
	if c.onProjects() {
		for _, rec := range c.dash.Projects.List.Items() {
			if rec.ID == id {
				c.dash.Projects.StartEdit(rec)
				c.show()
				return nil
			}
		}
		return fmt.Errorf("no project %q", id)
	}
	for _, rec := range c.dash.Experience.List.Items() {
		if rec.ID == id {
			c.dash.Experience.StartEdit(rec)
			c.show()
			return nil
		}
	}
	return fmt.Errorf("no experience %q", id)
}

func (c *Console) setField(field, value string) error {
	if c.onProjects() {
		return c.dash.Projects.SetField(field, value)
	}
	return c.dash.Experience.SetField(field, value)
}

// role takes 1-based indexes.
func (c *Console) role(args string) error {
	if c.onProjects() {
		return errors.New("projects have no roles")
	}
	e := c.dash.Experience
	sub, rest, _ := strings.Cut(args, " ")
	switch sub {
	case "add":
		e.AddRole()
		return nil
	case "rm":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return errors.New("usage: role rm <n>")
		}
		removed, err := e.RemoveRole(n - 1)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintln(c.out, "An experience needs at least one role.")
		}
		return nil
	case "set":
		parts := strings.SplitN(strings.TrimSpace(rest), " ", 3)
		if len(parts) < 2 {
			return errors.New("usage: role set <n> <field> <value>")
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return errors.New("usage: role set <n> <field> <value>")
		}
		value := ""
		if len(parts) == 3 {
			value = parts[2]
		}
		return e.SetRoleField(n-1, parts[1], value)
	}
	return errors.New("usage: role add|rm|set")
}

func (c *Console) tag(args string) error {
	sub, text, _ := strings.Cut(args, " ")
	switch sub {
	case "add":
		var added bool
		if c.onProjects() {
			c.dash.Projects.SetTagInput(text)
			added = c.dash.Projects.AddTag()
		} else {
			c.dash.Experience.SetTagInput(text)
			added = c.dash.Experience.AddTag()
		}
		if !added {
			fmt.Fprintln(c.out, "Tag not added (empty or duplicate).")
		}
		return nil
	case "rm":
		if c.onProjects() {
			c.dash.Projects.RemoveTag(text)
		} else {
			c.dash.Experience.RemoveTag(text)
		}
		return nil
	}
	return errors.New("usage: tag add|rm <text>")
}

func (c *Console) toggleTags(id string) {
	if c.onProjects() {
		c.dash.Projects.ToggleTags(id)
		return
	}
	c.dash.Experience.ToggleTags(id)
}

func (c *Console) image(path string) error {
	if !c.onProjects() {
		return errors.New("images are only staged on the projects tab")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := c.dash.Projects.ChooseImage(filepath.Base(path), f); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Image staged.")
	return nil
}

func (c *Console) save(ctx context.Context) error {
	var err error
	if c.onProjects() {
		err = c.dash.Projects.Submit(ctx)
	} else {
		err = c.dash.Experience.Submit(ctx)
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(c.out, "  %s is required\n", f)
		}
		return nil
	}
	if err != nil {
		c.show()
		return err
	}
	fmt.Fprintln(c.out, "Saved.")
	c.list()
	return nil
}

func (c *Console) delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("usage: delete <id>")
	}
	var err error
	if c.onProjects() {
		if !slices.ContainsFunc(c.dash.Projects.List.Items(), func(p models.Project) bool { return p.ID == id }) {
			return fmt.Errorf("no project %q", id)
		}
		err = c.dash.Projects.Delete(ctx, id)
	} else {
		if !slices.ContainsFunc(c.dash.Experience.List.Items(), func(e models.Experience) bool { return e.ID == id }) {
			return fmt.Errorf("no experience %q", id)
		}
		err = c.dash.Experience.Delete(ctx, id)
	}
	if errors.Is(err, dashboard.ErrNotConfirmed) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Deleted.")
	c.list()
	return nil
}
