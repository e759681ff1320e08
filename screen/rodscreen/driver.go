// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package rodscreen implements screen on top of a Chromium page driven by rod.
package rodscreen

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/uipages/screen"
)

var (
	mon = monkit.Package()

	// Error is the default error class for rodscreen.
	Error = errs.Class("rodscreen")
)

// Driver implements screen.Driver for a rod page.
type Driver struct {
	log  *zap.Logger
	page *rod.Page
}

var _ screen.Driver[*rod.Element] = (*Driver)(nil)

// NewDriver returns a driver for page.
func NewDriver(log *zap.Logger, page *rod.Page) *Driver {
	return &Driver{
		log:  log,
		page: page,
	}
}

// New returns a screen.Screen for page.
func New(log *zap.Logger, page *rod.Page, config screen.Config) *screen.Engine[*rod.Element] {
	return screen.NewEngine[*rod.Element](log, NewDriver(log, page), config)
}

// Document implements screen.Driver.
func (driver *Driver) Document(ctx context.Context) (*rod.Element, error) {
	el, err := driver.page.Context(ctx).ElementByJS(rod.Eval(`() => document.documentElement`))
	return el, Error.Wrap(err)
}

// QueryAll implements screen.Driver.
func (driver *Driver) QueryAll(ctx context.Context, scope *rod.Element, selector string) ([]*rod.Element, error) {
	els, err := scope.Context(ctx).Elements(selector)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return els, nil
}

// Visible implements screen.Driver.
func (driver *Driver) Visible(ctx context.Context, node *rod.Element) (bool, error) {
	visible, err := node.Context(ctx).Visible()
	return visible, Error.Wrap(err)
}

// Text implements screen.Driver.
func (driver *Driver) Text(ctx context.Context, node *rod.Element) (string, error) {
	text, err := node.Context(ctx).Text()
	return text, Error.Wrap(err)
}

// Click implements screen.Driver.
func (driver *Driver) Click(ctx context.Context, node *rod.Element) error {
	return Error.Wrap(node.Context(ctx).Click(proto.InputMouseButtonLeft, 1))
}

// ExpectResponse implements screen.Driver.
//
// The subscription to network events is created before ExpectResponse
// returns. Events that arrive before wait is called are queued by rod.
func (driver *Driver) ExpectResponse(ctx context.Context, match screen.ResponseMatch) (_ func() (screen.Response, error), err error) {
	defer mon.Task()(&ctx)(&err)

	tracker := newResponseTracker(match)

	var response screen.Response
	matched := false

	wait := driver.page.Context(ctx).EachEvent(
		tracker.request,
		func(e *proto.NetworkResponseReceived) bool {
			response, matched = tracker.response(e)
			return matched
		},
	)

	return func() (screen.Response, error) {
		wait()
		if !matched {
			if err := ctx.Err(); err != nil {
				return screen.Response{}, err
			}
			return screen.Response{}, Error.New("event stream closed before %s", match)
		}
		driver.log.Debug("matched network response", zap.String("url", response.URL), zap.Int("status", response.Status))
		return response, nil
	}, nil
}

// responseTracker pairs network responses with the requests that caused them.
type responseTracker struct {
	match screen.ResponseMatch
	// request method is only part of the request event
	methods map[proto.NetworkRequestID]string
}

func newResponseTracker(match screen.ResponseMatch) *responseTracker {
	return &responseTracker{
		match:   match,
		methods: map[proto.NetworkRequestID]string{},
	}
}

func (tracker *responseTracker) request(e *proto.NetworkRequestWillBeSent) {
	if e.Request != nil {
		tracker.methods[e.RequestID] = e.Request.Method
	}
}

// response returns the observed response and whether it is selected by the match.
// Responses to requests sent before tracking started are never selected.
func (tracker *responseTracker) response(e *proto.NetworkResponseReceived) (screen.Response, bool) {
	method, ok := tracker.methods[e.RequestID]
	if !ok || e.Response == nil {
		return screen.Response{}, false
	}
	delete(tracker.methods, e.RequestID)

	if !tracker.match.Matches(method, e.Response.URL, e.Response.Status) {
		return screen.Response{}, false
	}
	return screen.Response{
		Method: method,
		URL:    e.Response.URL,
		Status: e.Response.Status,
	}, true
}
