// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/spf13/cobra"

	"storj.io/common/cfgstruct"
	"storj.io/common/process"
	"storj.io/uipages/fixture"
	"storj.io/uipages/pages"
	"storj.io/uipages/screen"
	"storj.io/uipages/screen/rodscreen"
)

var (
	rootCmd = &cobra.Command{
		Use:   "collabrole",
		Short: "Collaborator role tools for the access settings panel",
	}
	setRoleCmd = &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of a collaborator in a live access settings panel",
		Args:  cobra.NoArgs,
		RunE:  cmdSetRole,
	}
	fixtureCmd = &cobra.Command{
		Use:   "fixture",
		Short: "Serve an access settings panel for browser tests",
		Args:  cobra.NoArgs,
		RunE:  cmdFixture,
	}

	setRoleCfg struct {
		URL                   string `help:"address of the page showing the access settings panel" default:""`
		Email                 string `help:"email of the collaborator" default:""`
		Role                  string `help:"role to assign" default:""`
		SkipNetworkValidation bool   `help:"do not wait for the role update request" default:"false"`
		Engine                string `help:"browser automation engine, rod or playwright" default:"rod"`

		Browser rodscreen.BrowserConfig
		Screen  screen.Config
		Pages   pages.Config
	}

	fixtureCfg struct {
		fixture.Config
		Collaborators string `help:"comma separated collaborators, each as name:email:role" default:"Alice:a@x.com:viewer,Bob:b@x.com:editor"`
	}
)

func init() {
	defaults := cfgstruct.DefaultsFlag(rootCmd)
	rootCmd.AddCommand(setRoleCmd)
	rootCmd.AddCommand(fixtureCmd)
	process.Bind(setRoleCmd, &setRoleCfg, defaults)
	process.Bind(fixtureCmd, &fixtureCfg, defaults)
}

func main() {
	process.Exec(rootCmd)
}
