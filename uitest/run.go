// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package uitest runs browser tests against a locally launched Chromium.
package uitest

import (
	"os"
	"testing"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/common/cfgstruct"
	"storj.io/common/testcontext"
	"storj.io/uipages/screen/pwscreen"
	"storj.io/uipages/screen/rodscreen"
)

var mon = monkit.Package()

// Test defines common services for uitests.
type Test func(t *testing.T, ctx *testcontext.Context, browser *rodscreen.Browser)

// PlaywrightTest defines common services for uitests driven by playwright.
type PlaywrightTest func(t *testing.T, ctx *testcontext.Context, browser *pwscreen.Browser)

// BrowserConfig returns the test browser configuration. Environment
// variables STORJ_TEST_BROWSER and STORJ_TEST_SHOW_BROWSER override the
// binary and headless mode.
func BrowserConfig() rodscreen.BrowserConfig {
	var config rodscreen.BrowserConfig
	cfgstruct.Bind(&pflag.FlagSet{}, &config, cfgstruct.UseTestDefaults())

	if bin := os.Getenv("STORJ_TEST_BROWSER"); bin != "" {
		config.Bin = bin
	}
	config.Show = os.Getenv("STORJ_TEST_SHOW_BROWSER") != ""
	return config
}

// Run starts a new UI test.
func Run(t *testing.T, test Test) {
	if os.Getenv("STORJ_TEST_UI") == "" {
		t.Skip("Enable UI tests by setting STORJ_TEST_UI")
	}

	ctx := testcontext.New(t)

	browser, err := rodscreen.Launch(ctx, zaptest.NewLogger(t).Named("browser"), BrowserConfig())
	require.NoError(t, err)
	defer ctx.Check(browser.Close)

	test(t, ctx, browser)
}

// RunPlaywright starts a new UI test using the playwright driver. It needs
// STORJ_TEST_PLAYWRIGHT besides STORJ_TEST_UI, because the driver and its
// browsers are installed on first use.
func RunPlaywright(t *testing.T, test PlaywrightTest) {
	if os.Getenv("STORJ_TEST_UI") == "" || os.Getenv("STORJ_TEST_PLAYWRIGHT") == "" {
		t.Skip("Enable playwright UI tests by setting STORJ_TEST_UI and STORJ_TEST_PLAYWRIGHT")
	}

	ctx := testcontext.New(t)

	browser, err := pwscreen.Launch(ctx, zaptest.NewLogger(t).Named("browser"), BrowserConfig())
	require.NoError(t, err)
	defer ctx.Check(browser.Close)

	test(t, ctx, browser)
}
