// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package pwscreen

import (
	"context"

	"github.com/playwright-community/playwright-go"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/uipages/screen"
	"storj.io/uipages/screen/rodscreen"
)

// Browser is a chromium launched through the playwright driver.
type Browser struct {
	playwright.Browser

	log    *zap.Logger
	pw     *playwright.Playwright
	config rodscreen.BrowserConfig
}

// Launch starts the playwright driver and a chromium browser. The browser
// options are shared with rodscreen, SlowMotion and Bin map to the playwright
// launch options.
func Launch(ctx context.Context, log *zap.Logger, config rodscreen.BrowserConfig) (_ *Browser, err error) {
	defer mon.Task()(&ctx)(&err)

	pw, err := playwright.Run(&playwright.RunOptions{
		Browsers: []string{"chromium"},
		Stdout:   zapWriter{Logger: log.Named("driver")},
	})
	if err != nil {
		return nil, Error.New("starting playwright: %w", err)
	}

	options := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!config.Show),
		SlowMo:   playwright.Float(float64(config.SlowMotion.Milliseconds())),
	}
	if config.Bin != "" {
		options.ExecutablePath = playwright.String(config.Bin)
	}
	if config.NoSandbox {
		options.ChromiumSandbox = playwright.Bool(false)
	}
	if config.Timeout > 0 {
		options.Timeout = playwright.Float(float64(config.Timeout.Milliseconds()))
	}

	browser, err := pw.Chromium.Launch(options)
	if err != nil {
		return nil, errs.Combine(Error.New("launching browser: %w", err), Error.Wrap(pw.Stop()))
	}

	return &Browser{
		Browser: browser,
		log:     log,
		pw:      pw,
		config:  config,
	}, nil
}

// Open opens url in a new page, waits for it to load and returns a screen for it.
func (browser *Browser) Open(ctx context.Context, url string, config screen.Config) (_ playwright.Page, _ *screen.Engine[playwright.ElementHandle], err error) {
	defer mon.Task()(&ctx)(&err)

	options := playwright.BrowserNewPageOptions{}
	if browser.config.ViewportWidth > 0 && browser.config.ViewportHeight > 0 {
		options.Viewport = &playwright.Size{
			Width:  browser.config.ViewportWidth,
			Height: browser.config.ViewportHeight,
		}
	}

	page, err := browser.Browser.NewPage(options)
	if err != nil {
		return nil, nil, Error.New("opening page: %w", err)
	}

	if config.Timeout > 0 {
		page.SetDefaultTimeout(float64(config.Timeout.Milliseconds()))
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return nil, nil, errs.Combine(Error.New("loading %q: %w", url, err), Error.Wrap(page.Close()))
	}

	return page, New(browser.log.Named("screen"), page, config), nil
}

// Close closes the browser and stops the playwright driver.
func (browser *Browser) Close() error {
	return errs.Combine(
		Error.Wrap(browser.Browser.Close()),
		Error.Wrap(browser.pw.Stop()),
	)
}

type zapWriter struct {
	*zap.Logger
}

func (log zapWriter) Write(data []byte) (int, error) {
	log.Logger.Info(string(data))
	return len(data), nil
}
