package api

import (
	"context"
	"net/http"

	"github.com/idilsaglam/mytodo/internal/apperr"
	"github.com/idilsaglam/mytodo/internal/model"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const op = "login"
	body, err := jsonBody(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}
	var out envelope[struct {
		Token string `json:"token"`
	}]
	err = c.do(ctx, call{
		op: op, method: http.MethodPost, path: "/api/auth/login",
		body: body, contentType: "application/json", fallback: "Invalid credentials",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Data.Token == "" {
		return "", apperr.NewServer(op, http.StatusOK, out.Message, "Invalid credentials")
	}
	return out.Data.Token, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body, err := jsonBody(map[string]string{"username": username, "email": email, "password": password})
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		op: "register", method: http.MethodPost, path: "/api/auth/register",
		body: body, contentType: "application/json", fallback: "Registration failed",
	}, nil)
}

func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var out envelope[model.Profile]
	err := c.do(ctx, call{
		op: "profile", method: http.MethodGet, path: "/api/profile",
		auth: true, fallback: "Failed to fetch profile",
	}, &out)
	return out.Data, err
}
