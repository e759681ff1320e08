// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package rodscreen

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/uipages/screen"
)

// BrowserConfig defines how the browser is launched.
type BrowserConfig struct {
	Show       bool          `help:"show the browser window instead of running headless" default:"false"`
	Bin        string        `help:"path to the chromium binary, downloaded when empty" default:""`
	NoSandbox  bool          `help:"disable the chromium sandbox" default:"true"`
	SlowMotion time.Duration `help:"delay between input actions" default:"0s" testDefault:"300ms"`
	Timeout    time.Duration `help:"maximum lifetime of the browser connection" default:"10m" testDefault:"1m"`

	ViewportWidth  int `help:"viewport width of new pages" default:"1350"`
	ViewportHeight int `help:"viewport height of new pages" default:"900"`
}

// Browser is a launched and connected browser.
type Browser struct {
	*rod.Browser

	log    *zap.Logger
	launch *launcher.Launcher
	config BrowserConfig
}

type zapWriter struct {
	*zap.Logger
}

func (log zapWriter) Write(data []byte) (int, error) {
	log.Logger.Info(string(data))
	return len(data), nil
}

// Launch starts a local browser and connects to it.
func Launch(ctx context.Context, log *zap.Logger, config BrowserConfig) (_ *Browser, err error) {
	defer mon.Task()(&ctx)(&err)

	launch := launcher.New().
		Context(ctx).
		Headless(!config.Show).
		Leakless(false).
		Devtools(false).
		NoSandbox(config.NoSandbox).
		Logger(zapWriter{Logger: log.Named("launcher")})
	if config.Bin != "" {
		launch = launch.Bin(config.Bin)
	}

	url, err := launch.Launch()
	if err != nil {
		launch.Cleanup()
		return nil, Error.New("launching browser: %w", err)
	}

	logBrowser := log.Named("rod")

	browser := rod.New().
		ControlURL(url).
		SlowMotion(config.SlowMotion).
		Logger(utils.Log(func(msg ...interface{}) {
			logBrowser.Info(fmt.Sprintln(msg...))
		})).
		Context(ctx)
	if config.Timeout > 0 {
		browser = browser.Timeout(config.Timeout)
	}

	if err := browser.Connect(); err != nil {
		launch.Kill()
		launch.Cleanup()
		return nil, Error.New("connecting to browser: %w", err)
	}

	return &Browser{
		Browser: browser,
		log:     log,
		launch:  launch,
		config:  config,
	}, nil
}

// Open opens url in a new tab, waits for it to load and returns a screen for it.
func (browser *Browser) Open(ctx context.Context, url string, config screen.Config) (_ *rod.Page, _ *screen.Engine[*rod.Element], err error) {
	defer mon.Task()(&ctx)(&err)

	page, err := browser.Browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, nil, Error.New("opening %q: %w", url, err)
	}

	if browser.config.ViewportWidth > 0 && browser.config.ViewportHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             browser.config.ViewportWidth,
			Height:            browser.config.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return nil, nil, errs.Combine(Error.Wrap(err), Error.Wrap(page.Close()))
		}
	}

	if err := page.Context(ctx).WaitLoad(); err != nil {
		return nil, nil, errs.Combine(Error.New("loading %q: %w", url, err), Error.Wrap(page.Close()))
	}

	return page, New(browser.log.Named("screen"), page, config), nil
}

// Close closes the browser and removes its temporary data.
func (browser *Browser) Close() error {
	err := browser.Browser.Close()
	browser.launch.Kill()
	browser.launch.Cleanup()
	return Error.Wrap(err)
}
