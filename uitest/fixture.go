// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package uitest

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/common/cfgstruct"
	"storj.io/common/sync2"
	"storj.io/common/testcontext"
	"storj.io/uipages/fixture"
)

// Fixture starts a fixture server serving collaborators. The server is
// closed when the test finishes.
func Fixture(t *testing.T, ctx *testcontext.Context, collaborators []fixture.Collaborator) *fixture.Server {
	var config fixture.Config
	cfgstruct.Bind(&pflag.FlagSet{}, &config, cfgstruct.UseTestDefaults())

	listener, err := net.Listen("tcp", config.Address)
	require.NoError(t, err)

	server := fixture.NewServer(zaptest.NewLogger(t).Named("fixture"), listener, config, collaborators)
	ctx.Go(func() error { return server.Run(ctx) })
	t.Cleanup(func() { require.NoError(t, server.Close()) })

	require.NoError(t, waitForAddress(ctx, listener.Addr().String(), 3*time.Second))
	return server
}

// waitForAddress will monitor starting when we are able to start the process.
func waitForAddress(ctx context.Context, address string, maxStartupWait time.Duration) error {
	defer mon.Task()(&ctx)(nil)

	start := time.Now()
	for time.Since(start) < maxStartupWait {
		if tryConnect(ctx, address) {
			return ctx.Err()
		}

		// wait a bit before retrying to reduce load
		if !sync2.Sleep(ctx, 50*time.Millisecond) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("did not start in required time %v", maxStartupWait)
}

// tryConnect will try to connect to the process public address.
func tryConnect(ctx context.Context, address string) bool {
	defer mon.Task()(&ctx)(nil)

	dialer := net.Dialer{}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	// ignoring errors, because we only care about being able to connect
	_ = conn.Close()
	return true
}
