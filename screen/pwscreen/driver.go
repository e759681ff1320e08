// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package pwscreen implements screen on top of a page driven by playwright.
package pwscreen

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/uipages/screen"
)

var (
	mon = monkit.Package()

	// Error is the default error class for pwscreen.
	Error = errs.Class("pwscreen")
)

// Driver implements screen.Driver for a playwright page.
type Driver struct {
	log  *zap.Logger
	page playwright.Page

	listen       sync.Once
	mu           sync.Mutex
	expectations []*expectation
}

type expectation struct {
	match    screen.ResponseMatch
	received chan screen.Response
}

var _ screen.Driver[playwright.ElementHandle] = (*Driver)(nil)

// NewDriver returns a driver for page.
func NewDriver(log *zap.Logger, page playwright.Page) *Driver {
	return &Driver{
		log:  log,
		page: page,
	}
}

// New returns a screen.Screen for page.
func New(log *zap.Logger, page playwright.Page, config screen.Config) *screen.Engine[playwright.ElementHandle] {
	return screen.NewEngine[playwright.ElementHandle](log, NewDriver(log, page), config)
}

// Document implements screen.Driver.
func (driver *Driver) Document(ctx context.Context) (playwright.ElementHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := driver.page.QuerySelector(":root")
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if root == nil {
		return nil, Error.New("page has no document element")
	}
	return root, nil
}

// QueryAll implements screen.Driver.
//
// Element handle queries, visibility and text reads return immediately in
// playwright, so they only check ctx before running.
func (driver *Driver) QueryAll(ctx context.Context, scope playwright.ElementHandle, selector string) ([]playwright.ElementHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := scope.QuerySelectorAll(selector)
	return els, Error.Wrap(err)
}

// Visible implements screen.Driver.
func (driver *Driver) Visible(ctx context.Context, node playwright.ElementHandle) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := node.IsVisible()
	return visible, Error.Wrap(err)
}

// Text implements screen.Driver.
func (driver *Driver) Text(ctx context.Context, node playwright.ElementHandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := node.InnerText()
	return text, Error.Wrap(err)
}

// Click implements screen.Driver. The click waits for actionability at most
// until the deadline of ctx.
func (driver *Driver) Click(ctx context.Context, node playwright.ElementHandle) error {
	timeout, err := remaining(ctx)
	if err != nil {
		return err
	}
	return Error.Wrap(node.Click(playwright.ElementHandleClickOptions{Timeout: timeout}))
}

// remaining returns the time left until the deadline of ctx in milliseconds,
// or nil to use the page default when ctx has no deadline.
func remaining(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return nil, context.DeadlineExceeded
	}
	// playwright treats 0 as no timeout
	return playwright.Float(math.Max(1, float64(left.Milliseconds()))), nil
}

// ExpectResponse implements screen.Driver.
//
// The page gets a single response handler, attached on first use. Handlers
// can not be removed one by one, because playwright compares them by their
// code pointer, so every expectation is tracked here instead.
func (driver *Driver) ExpectResponse(ctx context.Context, match screen.ResponseMatch) (_ func() (screen.Response, error), err error) {
	defer mon.Task()(&ctx)(&err)

	driver.listen.Do(func() {
		driver.page.OnResponse(driver.dispatch)
	})

	exp := &expectation{
		match:    match,
		received: make(chan screen.Response, 1),
	}

	driver.mu.Lock()
	driver.expectations = append(driver.expectations, exp)
	driver.mu.Unlock()

	return func() (screen.Response, error) {
		defer driver.forget(exp)

		select {
		case response := <-exp.received:
			driver.log.Debug("matched network response", zap.String("url", response.URL), zap.Int("status", response.Status))
			return response, nil
		case <-ctx.Done():
			return screen.Response{}, ctx.Err()
		}
	}, nil
}

func (driver *Driver) dispatch(response playwright.Response) {
	observed := screen.Response{
		URL:    response.URL(),
		Status: response.Status(),
	}
	if request := response.Request(); request != nil {
		observed.Method = request.Method()
	}
	driver.deliver(observed)
}

// deliver hands the response to the first waiting expectation matching it.
func (driver *Driver) deliver(response screen.Response) {
	driver.mu.Lock()
	defer driver.mu.Unlock()

	for i, exp := range driver.expectations {
		if !exp.match.Matches(response.Method, response.URL, response.Status) {
			continue
		}
		exp.received <- response
		driver.expectations = append(driver.expectations[:i:i], driver.expectations[i+1:]...)
		return
	}
}

func (driver *Driver) forget(exp *expectation) {
	driver.mu.Lock()
	defer driver.mu.Unlock()

	for i, e := range driver.expectations {
		if e == exp {
			driver.expectations = append(driver.expectations[:i:i], driver.expectations[i+1:]...)
			return
		}
	}
}
