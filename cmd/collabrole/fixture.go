// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"net"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/common/process"
	"storj.io/uipages/fixture"
)

func cmdFixture(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)
	log := zap.L()

	collaborators, err := parseCollaborators(fixtureCfg.Collaborators)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fixtureCfg.Address)
	if err != nil {
		return errs.Wrap(err)
	}

	server := fixture.NewServer(log.Named("fixture"), listener, fixtureCfg.Config, collaborators)

	log.Info("serving access settings panel", zap.String("url", server.URL()))
	return errs.Combine(server.Run(ctx), server.Close())
}

// parseCollaborators parses a comma separated list of name:email:role.
func parseCollaborators(list string) ([]fixture.Collaborator, error) {
	var collaborators []fixture.Collaborator
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, errs.New("invalid collaborator %q, expected name:email:role", entry)
		}
		collaborators = append(collaborators, fixture.Collaborator{
			Name:  parts[0],
			Email: parts[1],
			Role:  parts[2],
		})
	}
	return collaborators, nil
}
