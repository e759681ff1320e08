// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package pages

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"storj.io/uipages/screen"
)

const (
	accessSettingsView = ".nc-access-settings-view"
	collaboratorRow    = ".nc-collaborators-list-row"
	collaboratorEmail  = ".email"
	collaboratorRole   = ".nc-collaborator-role-select"
	collaboratorBadge  = ".nc-collaborator-role-select .badge-text"
	roleDropdown       = ".nc-role-select-dropdown"
	roleOptionPrefix   = ".nc-role-select-"

	roleUpdatePath     = "/users"
	defaultSettleDelay = 500 * time.Millisecond
)

// Collaborator is a row of the collaborators list.
type Collaborator struct {
	Email string
	Role  string
}

// SetRoleOptions changes how SetRole confirms the change.
type SetRoleOptions struct {
	// SkipNetworkValidation disables waiting for the role update request.
	SkipNetworkValidation bool
}

// AccessSettings is the page object of the project access settings panel.
type AccessSettings struct {
	log    *zap.Logger
	screen screen.Screen
	base   *ProjectView
	settle time.Duration
}

// Base returns the project view containing the panel.
func (page *AccessSettings) Base() *ProjectView { return page.base }

// Get returns the locator of the panel root.
func (page *AccessSettings) Get() screen.Locator {
	return screen.Locate(accessSettingsView)
}

func (page *AccessSettings) rows() screen.Locator {
	return page.Get().Locate(collaboratorRow)
}

// SetRole changes the role of the collaborator with the given email.
//
// The email must match exactly, the role is case-insensitive. Unless
// validation is skipped, it waits for the role update request when the
// role actually changes. When no row has the email, SetRole does nothing.
func (page *AccessSettings) SetRole(ctx context.Context, email, role string, opts SetRoleOptions) (err error) {
	defer mon.Task()(&ctx)(&err)

	rows := page.rows()
	if err := page.screen.WaitVisible(ctx, rows.Nth(0)); err != nil {
		return err
	}

	count, err := page.screen.Count(ctx, rows)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		row := rows.Nth(i)

		label, err := page.screen.Text(ctx, row.Locate(collaboratorEmail))
		if err != nil {
			return err
		}
		if rowEmail, ok := ParseEmail(label); !ok || rowEmail != email {
			continue
		}

		selected, err := page.screen.Text(ctx, row.Locate(collaboratorBadge))
		if err != nil {
			return err
		}

		if err := page.screen.Click(ctx, row.Locate(collaboratorRole)); err != nil {
			return err
		}

		option := screen.Locate(roleDropdown).Visible().
			Locate(roleOptionPrefix + strings.ToLower(role)).Visible().
			Last()
		clickOption := func(ctx context.Context) error {
			return page.screen.Click(ctx, option)
		}

		if !opts.SkipNetworkValidation && !hasRole(selected, role) {
			_, err := page.screen.WaitForResponse(ctx, screen.ResponseMatch{
				Path:    roleUpdatePath,
				Methods: []string{"POST"},
			}, clickOption)
			if err != nil {
				return err
			}
			page.log.Debug("role changed", zap.String("email", email), zap.String("from", selected), zap.String("to", role))
			return nil
		}

		if err := clickOption(ctx); err != nil {
			return err
		}
		return page.screen.Idle(ctx, page.settleDelay())
	}

	page.log.Warn("collaborator not found, role left unchanged",
		zap.String("email", email),
		zap.String("role", role),
		zap.Int("rows", count))
	return nil
}

// Collaborators reads every row of the collaborators list.
func (page *AccessSettings) Collaborators(ctx context.Context) (_ []Collaborator, err error) {
	defer mon.Task()(&ctx)(&err)

	rows := page.rows()
	if err := page.screen.WaitVisible(ctx, rows.Nth(0)); err != nil {
		return nil, err
	}

	count, err := page.screen.Count(ctx, rows)
	if err != nil {
		return nil, err
	}

	collaborators := make([]Collaborator, 0, count)
	for i := 0; i < count; i++ {
		row := rows.Nth(i)

		label, err := page.screen.Text(ctx, row.Locate(collaboratorEmail))
		if err != nil {
			return nil, err
		}
		email, ok := ParseEmail(label)
		if !ok {
			return nil, Error.New("row %d: no email in label %q", i, label)
		}

		role, err := page.screen.Text(ctx, row.Locate(collaboratorBadge))
		if err != nil {
			return nil, err
		}

		collaborators = append(collaborators, Collaborator{
			Email: email,
			Role:  strings.TrimSpace(role),
		})
	}
	return collaborators, nil
}

func (page *AccessSettings) settleDelay() time.Duration {
	if page.settle <= 0 {
		return defaultSettleDelay
	}
	return page.settle
}

// ParseEmail extracts the email from a collaborator label. The label shows
// the display name on the first line and the email on the second.
func ParseEmail(label string) (string, bool) {
	lines := strings.Split(label, "\n")
	if len(lines) < 2 {
		return "", false
	}
	return lines[1], true
}

// hasRole returns whether the badge text already shows role.
func hasRole(badge, role string) bool {
	return strings.Contains(strings.ToLower(badge), strings.ToLower(role))
}
