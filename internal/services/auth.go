package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/session"
	"github.com/desertthunder/pubdex/internal/shared"
)

const (
	loginPath    = "/auth/jwt/login"
	registerPath = "/auth/register"
	mePath       = "/users/me"
)

// AuthAPI exposes the authentication endpoints. Implements [session.AuthClient].
type AuthAPI struct {
	gw *Gateway
}

var _ session.AuthClient = (*AuthAPI)(nil)

// NewAuthAPI creates an auth client on top of the given gateway.
func NewAuthAPI(gw *Gateway) *AuthAPI {
	return &AuthAPI{gw: gw}
}

// Login exchanges credentials for a bearer token via the form-encoded
// password grant. The server expects the email in the "username" field.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{
		"username": {email},
		"password": {password},
	}

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	err := a.gw.JSON(ctx, http.MethodPost, loginPath, RequestOpts{Form: form}, &out)
	if err != nil {
		var apiErr *shared.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return "", shared.ErrInvalidCredentials
		}
		return "", err
	}

	if out.AccessToken == "" {
		return "", fmt.Errorf("login response missing access_token")
	}

	return out.AccessToken, nil
}

// Register creates an account. It does not log the user in.
// First and last name are omitted from the payload when empty so the server
// stores them as absent rather than blank.
func (a *AuthAPI) Register(ctx context.Context, reg session.Registration) (*models.UserProfile, error) {
	payload := map[string]any{
		"email":        reg.Email,
		"password":     reg.Password,
		"is_active":    true,
		"is_superuser": false,
		"is_verified":  false,
	}
	if reg.FirstName != "" {
		payload["first_name"] = reg.FirstName
	}
	if reg.LastName != "" {
		payload["last_name"] = reg.LastName
	}

	var profile models.UserProfile
	err := a.gw.JSON(ctx, http.MethodPost, registerPath, RequestOpts{JSON: payload}, &profile)
	if err != nil {
		var apiErr *shared.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}

	return &profile, nil
}

// Me fetches the authenticated user's profile.
func (a *AuthAPI) Me(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := a.gw.JSON(ctx, http.MethodGet, mePath, RequestOpts{}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile patches first and last name on the current user.
func (a *AuthAPI) UpdateProfile(ctx context.Context, firstName, lastName string) (*models.UserProfile, error) {
	payload := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	}

	var profile models.UserProfile
	if err := a.gw.JSON(ctx, http.MethodPatch, mePath, RequestOpts{JSON: payload}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
