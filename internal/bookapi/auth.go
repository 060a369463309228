package bookapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Data.Token == "" {
		return "", fmt.Errorf("login: %w: missing token", ErrInvalidResponse)
	}
	return resp.Data.Token, nil
}

type profileRequest struct {
	ID string `json:"id"`
}

type profileResponse struct {
	UserProfile *domain.Profile `json:"userprofile"`
}

// GetProfile fetches the profile of the user identified by the token subject.
func (c *Client) GetProfile(ctx context.Context, token, userID string) (domain.Profile, error) {
	var resp profileResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/user",
		token:  token,
		body:   profileRequest{ID: userID},
	}, &resp)
	if err != nil {
		return domain.Profile{}, err
	}
	if resp.UserProfile == nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w: missing userprofile", ErrInvalidResponse)
	}
	return *resp.UserProfile, nil
}

type registrationResponse struct {
	ResponseTxt bool `json:"responseTxt"`
}

func (c *Client) RegisterCustomer(ctx context.Context, reg domain.CustomerRegistration) error {
	return c.register(ctx, "/user/register", "", reg)
}

// RegisterAdmin needs the token of a super admin.
func (c *Client) RegisterAdmin(ctx context.Context, token string, reg domain.AdminRegistration) error {
	return c.register(ctx, "/user/register-admin", token, reg)
}

func (c *Client) register(ctx context.Context, path, token string, payload any) error {
	var resp registrationResponse
	err := c.do(ctx, request{method: http.MethodPost, path: path, token: token, body: payload}, &resp)
	if err != nil {
		return err
	}
	if !resp.ResponseTxt {
		return ErrRejected
	}
	return nil
}
