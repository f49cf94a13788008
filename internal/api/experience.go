package api

import (
	"context"
	"net/http"

	"github.com/Zachkp/folio/internal/models"
)

// ListExperience fetches every experience record.
func (c *Client) ListExperience(ctx context.Context) ([]models.Experience, error) {
	var out []models.Experience
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"experience"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExperience POSTs a new experience record.
func (c *Client) CreateExperience(ctx context.Context, credential string, in models.ExperienceInput) (*models.Experience, error) {
	return c.sendExperience(ctx, http.MethodPost, credential, in, "experience")
}

// UpdateExperience PUTs the record identified by id.
func (c *Client) UpdateExperience(ctx context.Context, credential, id string, in models.ExperienceInput) (*models.Experience, error) {
	return c.sendExperience(ctx, http.MethodPut, credential, in, "experience", id)
}

// DeleteExperience removes the record identified by id.
func (c *Client) DeleteExperience(ctx context.Context, credential, id string) error {
	return c.do(ctx, request{
		method:     http.MethodDelete,
		segments:   []string{"experience", id},
		credential: credential,
	}, nil)
}

func (c *Client) sendExperience(ctx context.Context, method, credential string, in models.ExperienceInput, segments ...string) (*models.Experience, error) {
	if in.Roles == nil {
		in.Roles = []models.Role{}
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var out models.Experience
	err = c.do(ctx, request{
		method:      method,
		segments:    segments,
		credential:  credential,
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
