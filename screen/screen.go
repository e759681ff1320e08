// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package screen defines the capabilities page objects use to talk to a
// browser page: locating elements, waiting for them, clicking them and
// correlating UI actions with network responses.
package screen

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	mon = monkit.Package()

	// Error is the default error class for screen.
	Error = errs.Class("screen")
	// ErrTimeout is returned when a wait exceeds its bound.
	ErrTimeout = errs.Class("screen timeout")
	// ErrStrict is returned when an action targets a locator matching more
	// than one element.
	ErrStrict = errs.Class("screen strict mode violation")
)

// Config defines the bounds for waiting on the page.
type Config struct {
	Timeout      time.Duration `help:"how long a single wait may take before failing" default:"30s" testDefault:"10s"`
	PollInterval time.Duration `help:"how often element queries are retried while waiting" default:"100ms"`
}

// Screen is the set of page operations page objects are built on.
//
// Every method, except Count and Idle, waits until its precondition holds
// or Config.Timeout passes.
type Screen interface {
	// Count returns the current number of elements matched by loc without waiting.
	Count(ctx context.Context, loc Locator) (int, error)
	// WaitVisible waits until loc matches a single visible element.
	WaitVisible(ctx context.Context, loc Locator) error
	// Text waits until loc matches a single element and returns its displayed text.
	Text(ctx context.Context, loc Locator) (string, error)
	// Click waits until loc matches a single visible element and clicks it.
	Click(ctx context.Context, loc Locator) error
	// WaitForResponse registers an expectation for a response matching match,
	// then runs trigger, then waits until the response is observed.
	//
	// The expectation is always registered before trigger runs, so a response
	// caused by trigger can not be missed.
	WaitForResponse(ctx context.Context, match ResponseMatch, trigger func(ctx context.Context) error) (Response, error)
	// Idle waits for the given duration.
	Idle(ctx context.Context, duration time.Duration) error
}

// ResponseMatch selects network responses.
type ResponseMatch struct {
	// Path must be contained in the response URL path.
	Path string
	// Methods lists the accepted request methods, any method is accepted when empty.
	Methods []string
	// Status is the expected status code, any status is accepted when zero.
	Status int
}

// Matches returns whether a response for the request method and URL is selected.
func (match ResponseMatch) Matches(method, rawURL string, status int) bool {
	if match.Status != 0 && match.Status != status {
		return false
	}

	if len(match.Methods) > 0 {
		accepted := false
		for _, m := range match.Methods {
			if strings.EqualFold(m, method) {
				accepted = true
				break
			}
		}
		if !accepted {
			return false
		}
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.EscapedPath()
	}
	return strings.Contains(path, match.Path)
}

// String implements fmt.Stringer.
func (match ResponseMatch) String() string {
	methods := "*"
	if len(match.Methods) > 0 {
		methods = strings.Join(match.Methods, "|")
	}
	if match.Status != 0 {
		return fmt.Sprintf("%s *%s* (%d)", methods, match.Path, match.Status)
	}
	return fmt.Sprintf("%s *%s*", methods, match.Path)
}

// Response is an observed network response.
type Response struct {
	Method string
	URL    string
	Status int
}
