// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/common/process"
	"storj.io/uipages/pages"
	"storj.io/uipages/screen"
	"storj.io/uipages/screen/pwscreen"
	"storj.io/uipages/screen/rodscreen"
)

func cmdSetRole(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)
	log := zap.L()

	if setRoleCfg.URL == "" || setRoleCfg.Email == "" || setRoleCfg.Role == "" {
		return errs.New("--url, --email and --role are required")
	}

	s, closeScreen, err := openScreen(ctx, log, setRoleCfg.Engine)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, closeScreen()) }()

	settings := pages.NewProjectView(log.Named("project"), s, setRoleCfg.Pages).AccessSettings()

	collaborators, err := settings.Collaborators(ctx)
	if err != nil {
		return err
	}
	if !hasCollaborator(collaborators, setRoleCfg.Email) {
		return errs.New("collaborator %q not found", setRoleCfg.Email)
	}

	err = settings.SetRole(ctx, setRoleCfg.Email, setRoleCfg.Role, pages.SetRoleOptions{
		SkipNetworkValidation: setRoleCfg.SkipNetworkValidation,
	})
	if err != nil {
		return err
	}

	log.Info("role set", zap.String("email", setRoleCfg.Email), zap.String("role", setRoleCfg.Role))
	return nil
}

// openScreen launches the browser of the engine and opens the configured url.
func openScreen(ctx context.Context, log *zap.Logger, engine string) (_ screen.Screen, _ func() error, err error) {
	switch engine {
	case "rod":
		browser, err := rodscreen.Launch(ctx, log.Named("browser"), setRoleCfg.Browser)
		if err != nil {
			return nil, nil, err
		}
		page, s, err := browser.Open(ctx, setRoleCfg.URL, setRoleCfg.Screen)
		if err != nil {
			return nil, nil, errs.Combine(err, browser.Close())
		}
		return s, func() error {
			return errs.Combine(page.Close(), browser.Close())
		}, nil

	case "playwright":
		browser, err := pwscreen.Launch(ctx, log.Named("browser"), setRoleCfg.Browser)
		if err != nil {
			return nil, nil, err
		}
		page, s, err := browser.Open(ctx, setRoleCfg.URL, setRoleCfg.Screen)
		if err != nil {
			return nil, nil, errs.Combine(err, browser.Close())
		}
		return s, func() error {
			return errs.Combine(page.Close(), browser.Close())
		}, nil

	default:
		return nil, nil, errs.New("unknown engine %q", engine)
	}
}

func hasCollaborator(collaborators []pages.Collaborator, email string) bool {
	for _, c := range collaborators {
		if c.Email == email {
			return true
		}
	}
	return false
}
