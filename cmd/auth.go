package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/pubdex/internal/session"
	"github.com/desertthunder/pubdex/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) password(cmd *cli.Command) (string, error) {
	if p := cmd.String("password"); p != "" {
		return p, nil
	}
	if p := os.Getenv("PUBDEX_PASSWORD"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("%w: password required (use --password or PUBDEX_PASSWORD)", shared.ErrValidation)
}

// AuthLogin exchanges credentials for a session token and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password, err := r.password(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "email", email)

	if _, err := r.session.SignIn(ctx, r.auth, email, password); err != nil {
		return err
	}

	if err := r.session.LoadProfile(ctx, r.auth); err != nil {
		r.logger.Warn("signed in but profile fetch failed", "err", err)
	}

	return r.writePlainln("✓ Signed in as %s", r.session.Describe())
}

// AuthRegister creates a new account. Registration does not sign in; the
// server expects a separate login afterwards.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password, err := r.password(cmd)
	if err != nil {
		return err
	}

	reg := session.Registration{
		Email:     email,
		Password:  password,
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
	}

	profile, err := r.session.Register(ctx, r.auth, reg)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Account created for %s", profile.Email)
	return r.writePlainln("Run 'pubdex auth login' to sign in.")
}

// AuthLogout clears the in-memory and persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return r.writePlainln("Not signed in.")
	}

	r.session.SignOut()
	return r.writePlainln("✓ Signed out")
}

// AuthWhoami fetches and prints the signed-in user's profile.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return shared.ErrUnauthenticated
	}

	profile, err := r.auth.Me(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	r.writePlainln("Email: %s", profile.Email)
	if name := profile.DisplayName(); name != profile.Email {
		r.writePlainln("Name:  %s", name)
	}
	if expiry, ok := r.session.Expiry(); ok {
		r.writePlainln("Token expires: %s", expiry.Format("2006-01-02 15:04 MST"))
	}
	return nil
}

// AuthUpdate patches the signed-in user's profile.
func (r *Runner) AuthUpdate(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return shared.ErrUnauthenticated
	}

	firstName := cmd.String("first-name")
	lastName := cmd.String("last-name")
	if firstName == "" && lastName == "" {
		return fmt.Errorf("%w: nothing to update (use --first-name or --last-name)", shared.ErrValidation)
	}

	profile, err := r.auth.UpdateProfile(ctx, firstName, lastName)
	if err != nil {
		return err
	}

	return r.writePlainln("✓ Profile updated: %s", profile.DisplayName())
}
