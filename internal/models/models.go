// Package models holds the portfolio records exchanged with the remote data store.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Role is one position held at an organization. Dates are free-form text.
type Role struct {
	Role        string `json:"role" validate:"required"`
	Description string `json:"description" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
	Website     string `json:"website"`
}

// Experience is a persisted experience record.
type Experience struct {
	ID           string   `json:"_id,omitempty"`
	Organization string   `json:"organization"`
	Logo         string   `json:"logo"`
	Website      string   `json:"website,omitempty"`
	Tags         []string `json:"tags"`
	Roles        []Role   `json:"roles"`
}

// Project is a persisted project record.
type Project struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	LiveURL     string   `json:"liveUrl,omitempty"`
}

// ExperienceInput is the JSON body sent when creating or updating an experience.
// The role count is not validated: an empty roles list is accepted here.
type ExperienceInput struct {
	Organization string   `json:"organization" validate:"required"`
	Logo         string   `json:"logo" validate:"required"`
	Website      string   `json:"website"`
	Roles        []Role   `json:"roles" validate:"dive"`
	Tags         []string `json:"tags"`
}

// ProjectInput carries the scalar project fields sent as multipart parts.
type ProjectInput struct {
	Title       string   `validate:"required"`
	Description string   `validate:"required"`
	Image       string   // stored image URL, used when no file is staged
	Tags        []string
	SourceURL   string
	LiveURL     string
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New()

// Validate checks the required experience fields.
func (in *ExperienceInput) Validate() error {
	return toValidationError(validate.Struct(in))
}

// Validate checks the required project fields.
func (in *ProjectInput) Validate() error {
	return toValidationError(validate.Struct(in))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// strip the struct name: "ExperienceInput.Roles[0].Role" -> "Roles[0].Role"
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		fields = append(fields, ns)
	}
	return &ValidationError{Fields: fields}
}
