package api

import (
	"context"
	"errors"
	"net/http"
)

// ErrInvalidPassword is returned when the store rejects a login attempt.
var ErrInvalidPassword = errors.New("invalid password")

type loginRequest struct {
	Password string `json:"password"`
}

// Login checks password against the store. Any 2xx response means the
// password is accepted as the admin credential.
func (c *Client) Login(ctx context.Context, password string) error {
	body, err := jsonBody(loginRequest{Password: password})
	if err != nil {
		return err
	}
	err = c.do(ctx, request{
		method:      http.MethodPost,
		segments:    []string{"admin", "login"},
		body:        body,
		contentType: "application/json",
	}, nil)
	var se *StatusError
	if errors.As(err, &se) {
		return ErrInvalidPassword
	}
	return err
}
