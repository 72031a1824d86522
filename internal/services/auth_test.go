package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/desertthunder/pubdex/internal/session"
	"github.com/desertthunder/pubdex/internal/shared"
	tu "github.com/desertthunder/pubdex/internal/testing"
)

func TestAuthAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		t.Run("posts form credentials and returns the token", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(200, `{"access_token":"tok-abc","token_type":"bearer"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			token, err := api.Login(ctx, "jo@example.com", "hunter2")
			if err != nil {
				t.Fatalf("expected login, got %v", err)
			}
			if token != "tok-abc" {
				t.Errorf("unexpected token %q", token)
			}

			req := mock.Requests[0]
			if req.URL.Path != "/auth/jwt/login" {
				t.Errorf("unexpected path %q", req.URL.Path)
			}
			body, _ := io.ReadAll(req.Body)
			form, _ := url.ParseQuery(string(body))
			if form.Get("username") != "jo@example.com" {
				t.Errorf("expected email in the username field, got %q", form.Get("username"))
			}
			if form.Get("password") != "hunter2" {
				t.Errorf("expected password field, got %q", form.Get("password"))
			}
		})

		t.Run("maps a 400 to invalid credentials", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(400, `{"detail":"LOGIN_BAD_CREDENTIALS"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			_, err := api.Login(ctx, "jo@example.com", "wrong")
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})

		t.Run("maps a 401 to invalid credentials", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(401, `{"detail":"Unauthorized"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			_, err := api.Login(ctx, "jo@example.com", "wrong")
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})

		t.Run("passes other failures through", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(500, `oops`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			_, err := api.Login(ctx, "jo@example.com", "hunter2")
			if !errors.Is(err, shared.ErrServer) {
				t.Errorf("expected ErrServer, got %v", err)
			}
		})

		t.Run("rejects a success response without a token", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(200, `{}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			if _, err := api.Login(ctx, "jo@example.com", "hunter2"); err == nil {
				t.Error("expected error for missing access_token")
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("sends the account payload with fixed flags", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(201, `{"id":"u1","email":"new@example.com","is_active":true}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			profile, err := api.Register(ctx, session.Registration{
				Email:     "new@example.com",
				Password:  "hunter2",
				FirstName: "Jo",
			})
			if err != nil {
				t.Fatalf("expected registration, got %v", err)
			}
			if profile.Email != "new@example.com" {
				t.Errorf("unexpected profile %+v", profile)
			}

			body, _ := io.ReadAll(mock.Requests[0].Body)
			var payload map[string]any
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("expected JSON payload, got %q", body)
			}

			if payload["is_active"] != true || payload["is_superuser"] != false || payload["is_verified"] != false {
				t.Errorf("unexpected account flags in %v", payload)
			}
			if payload["first_name"] != "Jo" {
				t.Errorf("expected first_name, got %v", payload["first_name"])
			}
			if _, ok := payload["last_name"]; ok {
				t.Error("expected empty last_name to be omitted")
			}
		})

		t.Run("maps a 400 to a taken email", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(400, `{"detail":"REGISTER_USER_ALREADY_EXISTS"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			_, err := api.Register(ctx, session.Registration{Email: "taken@example.com", Password: "x"})
			if !errors.Is(err, shared.ErrEmailTaken) {
				t.Errorf("expected ErrEmailTaken, got %v", err)
			}
		})

		t.Run("passes validation failures through", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(422, `{"detail":"password too short"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), nil, nil))

			_, err := api.Register(ctx, session.Registration{Email: "new@example.com", Password: "x"})
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	})

	t.Run("Me", func(t *testing.T) {
		t.Run("decodes the profile", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(200, `{"id":"u1","email":"jo@example.com","first_name":"Jo"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), staticTokens("tok"), nil))

			profile, err := api.Me(ctx)
			if err != nil {
				t.Fatalf("expected profile, got %v", err)
			}
			if profile.Email != "jo@example.com" {
				t.Errorf("unexpected profile %+v", profile)
			}
			if got := mock.Requests[0].Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("expected authenticated request, got %q", got)
			}
		})

		t.Run("propagates an expired session", func(t *testing.T) {
			mock := tu.NewMockRoundTripper(tu.JSONResponse(401, `{"detail":"Unauthorized"}`), nil)
			api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), staticTokens("stale"), nil))

			_, err := api.Me(ctx)
			if !errors.Is(err, shared.ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		mock := tu.NewMockRoundTripper(tu.JSONResponse(200, `{"id":"u1","email":"jo@example.com","first_name":"Joanna"}`), nil)
		api := NewAuthAPI(NewGateway("http://api.test", clientWith(mock), staticTokens("tok"), nil))

		profile, err := api.UpdateProfile(ctx, "Joanna", "Doe")
		if err != nil {
			t.Fatalf("expected update, got %v", err)
		}
		if profile.FirstName == nil || *profile.FirstName != "Joanna" {
			t.Errorf("unexpected profile %+v", profile)
		}

		req := mock.Requests[0]
		if req.Method != http.MethodPatch || req.URL.Path != "/users/me" {
			t.Errorf("expected PATCH /users/me, got %s %s", req.Method, req.URL.Path)
		}
	})
}
