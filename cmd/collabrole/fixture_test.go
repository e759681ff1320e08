// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/uipages/fixture"
	"storj.io/uipages/pages"
)

func TestParseCollaborators(t *testing.T) {
	collaborators, err := parseCollaborators("Alice:a@x.com:viewer, Bob:b@x.com:Editor,")
	require.NoError(t, err)
	require.Equal(t, []fixture.Collaborator{
		{Name: "Alice", Email: "a@x.com", Role: "viewer"},
		{Name: "Bob", Email: "b@x.com", Role: "Editor"},
	}, collaborators)

	collaborators, err = parseCollaborators("")
	require.NoError(t, err)
	require.Empty(t, collaborators)

	_, err = parseCollaborators("Alice:a@x.com")
	require.Error(t, err)
}

func TestHasCollaborator(t *testing.T) {
	collaborators := []pages.Collaborator{{Email: "a@x.com", Role: "Viewer"}}
	require.True(t, hasCollaborator(collaborators, "a@x.com"))
	require.False(t, hasCollaborator(collaborators, "A@x.com"))
}

func TestFixtureFlags(t *testing.T) {
	flags := fixtureCmd.Flags()
	for _, name := range []string{"address", "project", "collaborators"} {
		require.NotNil(t, flags.Lookup(name), name)
	}

	address := flags.Lookup("address")
	require.Equal(t, "fixture http listening address", address.Usage)
}
