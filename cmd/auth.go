package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/8bitbanana/music-converter/internal/auth"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the authorization URL for the requested scopes. The user
// opens it themselves and pastes the resulting code into `auth login`.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	url, err := store.AuthCodeURL(cmd.StringSlice("scope"), shared.GenerateID())
	if err != nil {
		return err
	}

	r.logger.Info("open this URL and authorize the application", "service", service)
	return r.writePlain("%s\n", url)
}

// AuthLogin exchanges a pasted authorization code for tokens and persists
// the credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	cred, err := store.Exchange(ctx, code, cmd.StringSlice("scope"), cmd.String("user"))
	if err != nil {
		var mismatch *auth.UsernameIdentityError
		if errors.As(err, &mismatch) {
			return fmt.Errorf("logged in as %q, expected %q: %w", mismatch.Actual, mismatch.Expected, err)
		}
		return err
	}

	r.logger.Info("authentication successful", "service", service, "user", cred.Username)
	return r.writePlain("✓ Logged in to %s as %s\n", service, cred.Username)
}

// AuthAccounts lists every stored credential for a service.
func (r *Runner) AuthAccounts(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	creds, err := store.LookupAll(nil)
	if err != nil {
		if errors.Is(err, shared.ErrNoCredential) {
			return r.writePlain("No stored credentials for %s\n", service)
		}
		return err
	}

	if cmd.Bool("json") {
		type account struct {
			Username string   `json:"username"`
			Scopes   []string `json:"scopes"`
		}
		accounts := make([]account, len(creds))
		for i, c := range creds {
			accounts[i] = account{Username: c.Username, Scopes: c.Scopes}
		}
		return r.writeJSON(accounts, true)
	}

	for _, c := range creds {
		if err := r.writePlain("%s\t%v\n", c.Username, c.Scopes); err != nil {
			return err
		}
	}
	return nil
}

// AuthStatus verifies a stored access token against the identity endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	cred, err := store.Lookup(nil, cmd.String("user"))
	if err != nil {
		return err
	}

	username, err := store.VerifyIdentity(ctx, cred.AccessToken)
	if err != nil {
		return fmt.Errorf("stored token for %q is not usable: %w", cred.Username, err)
	}

	return r.writePlain("✓ %s token valid for %s\n", service, username)
}

// AuthRefresh exchanges a stored refresh token for a fresh access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	cred, err := store.Lookup(nil, cmd.String("user"))
	if err != nil {
		return err
	}

	refreshed, err := store.Refresh(ctx, cred)
	if err != nil {
		return err
	}

	r.logger.Info("token refreshed", "service", service, "user", refreshed.Username)
	return r.writePlain("✓ Refreshed %s token for %s\n", service, refreshed.Username)
}

// AuthDelete removes a user's stored credentials.
func (r *Runner) AuthDelete(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	username := cmd.StringArg("user")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	if err := store.Delete(username); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s credentials for %s\n", service, username)
}

// AuthWipe removes every stored credential for a service.
func (r *Runner) AuthWipe(ctx context.Context, cmd *cli.Command) error {
	store, service, err := r.authStore(cmd.String("service"))
	if err != nil {
		return err
	}

	if err := store.WipeAll(); err != nil {
		return err
	}
	return r.writePlain("✓ Wiped all %s credentials\n", service)
}
