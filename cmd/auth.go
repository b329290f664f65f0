package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// AuthSignUp creates an account and starts a session.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.StringArg("email"))
	if email == "" {
		return fmt.Errorf("%w: an email address is required", shared.ErrMissingArgument)
	}

	user, err := r.auth.SignUp(email, cmd.String("password"), cmd.String("name"))
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	r.logger.Info("account created", "email", user.Email())
	return r.writePlain("✓ Signed up as %s (%s)\n", user.DisplayName(), user.Email())
}

// AuthSignIn authenticates against a stored account and starts a session.
func (r *Runner) AuthSignIn(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.StringArg("email"))
	if email == "" {
		return fmt.Errorf("%w: an email address is required", shared.ErrMissingArgument)
	}

	user, err := r.auth.SignIn(email, cmd.String("password"))
	if err != nil {
		return fmt.Errorf("signin failed: %w", err)
	}

	return r.writePlain("✓ Signed in as %s (%s)\n", user.DisplayName(), user.Email())
}

// AuthSignOut ends the active session.
func (r *Runner) AuthSignOut(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	if r.auth.Current() == nil {
		return r.writePlain("No active session.\n")
	}

	if err := r.auth.SignOut(); err != nil {
		return fmt.Errorf("signout failed: %w", err)
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthWhoAmI prints the signed-in account, if any.
func (r *Runner) AuthWhoAmI(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	user := r.auth.Current()
	if user == nil {
		return r.writePlain("Not signed in.\n")
	}

	return r.writePlain("%s (%s)\n", user.DisplayName(), user.Email())
}
