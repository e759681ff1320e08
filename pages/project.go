// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package pages contains page objects for the project dashboard.
package pages

import (
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/uipages/screen"
)

var (
	mon = monkit.Package()

	// Error is the default error class for pages.
	Error = errs.Class("pages")
)

// Config contains the tunables of page objects.
type Config struct {
	SettleDelay time.Duration `help:"how long to wait after an interaction whose effect can not be observed" default:"500ms"`
}

// ProjectView is the page object of an opened project.
type ProjectView struct {
	log    *zap.Logger
	screen screen.Screen
	config Config
}

// NewProjectView returns the page object for a project view shown on s.
func NewProjectView(log *zap.Logger, s screen.Screen, config Config) *ProjectView {
	return &ProjectView{
		log:    log,
		screen: s,
		config: config,
	}
}

// Screen returns the screen the view is shown on.
func (view *ProjectView) Screen() screen.Screen { return view.screen }

// AccessSettings returns the access settings panel of the project.
func (view *ProjectView) AccessSettings() *AccessSettings {
	return &AccessSettings{
		log:    view.log.Named("access-settings"),
		screen: view.screen,
		base:   view,
		settle: view.config.SettleDelay,
	}
}
