package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lowtide/lowtide/internal/auth"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login runs the device authorization flow and persists the session bundle.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	clientID := os.Getenv("TIDAL_CLIENT_ID")
	if clientID == "" {
		return fmt.Errorf("%w: TIDAL_CLIENT_ID must be set", shared.ErrMissingConfig)
	}

	authStore := auth.NewStore(config.SessionPath, clientID, os.Getenv("TIDAL_CLIENT_SECRET"))

	session, err := authStore.Login(ctx, func(verificationURI, verificationURIComplete, userCode string) {
		r.writePlain("To authorize this device, visit:\n\n")
		if verificationURIComplete != "" {
			r.writePlain("  %s\n\n", verificationURIComplete)
		} else {
			r.writePlain("  %s\n\n", verificationURI)
		}
		r.writePlain("and enter the code: %s\n\n", userCode)
		r.writePlain("Waiting for authorization...\n")
	})
	if err != nil {
		return err
	}

	r.logger.Info("login successful", "user_id", session.UserID, "country", session.CountryCode)
	r.writePlain("✓ Logged in (user %s)\n", session.UserID)
	r.writePlain("Session saved to: %s\n", authStore.Path())

	return nil
}
