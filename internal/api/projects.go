package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/Zachkp/folio/internal/models"
)

// ImageFile is a locally selected image staged for upload.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ListProjects fetches every project record.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"projects"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProject POSTs a new project as a multipart form.
func (c *Client) CreateProject(ctx context.Context, credential string, in models.ProjectInput, image *ImageFile) (*models.Project, error) {
	return c.sendProject(ctx, http.MethodPost, credential, in, image, "projects")
}

// UpdateProject PUTs the project identified by id as a multipart form.
func (c *Client) UpdateProject(ctx context.Context, credential, id string, in models.ProjectInput, image *ImageFile) (*models.Project, error) {
	return c.sendProject(ctx, http.MethodPut, credential, in, image, "projects", id)
}

// DeleteProject removes the project identified by id.
func (c *Client) DeleteProject(ctx context.Context, credential, id string) error {
	return c.do(ctx, request{
		method:     http.MethodDelete,
		segments:   []string{"projects", id},
		credential: credential,
	}, nil)
}

func (c *Client) sendProject(ctx context.Context, method, credential string, in models.ProjectInput, image *ImageFile, segments ...string) (*models.Project, error) {
	body, contentType, err := EncodeProjectForm(in, image)
	if err != nil {
		return nil, err
	}
	var out models.Project
	err = c.do(ctx, request{
		method:      method,
		segments:    segments,
		credential:  credential,
		body:        body,
		contentType: contentType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EncodeProjectForm builds the multipart body for a project write. Each tag
// is its own "tags" part. The "image" part is the staged file when image is
// non-nil, otherwise the stored URL as a plain field, omitted when empty.
func EncodeProjectForm(in models.ProjectInput, image *ImageFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
	}
	for _, tag := range in.Tags {
		fields = append(fields, struct{ name, value string }{"tags", tag})
	}
	fields = append(fields,
		struct{ name, value string }{"sourceUrl", in.SourceURL},
		struct{ name, value string }{"liveUrl", in.LiveURL},
	)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	switch {
	case image != nil:
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(image.Name)))
		ct := image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, "", fmt.Errorf("write image part: %w", err)
		}
	case in.Image != "":
		if err := w.WriteField("image", in.Image); err != nil {
			return nil, "", fmt.Errorf("write field image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
