// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package screentest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap/zaptest"

	"storj.io/uipages/screen"
)

// ErrDetached is returned when acting on a node that is no longer in the page.
var ErrDetached = errs.Class("detached node")

// Driver implements screen.Driver over an in-memory tree.
type Driver struct {
	Root *Node

	mu           sync.Mutex
	clicks       []*Node
	expectations []*expectation
	expected     []screen.ResponseMatch
	responses    []screen.Response
}

type expectation struct {
	match    screen.ResponseMatch
	received chan screen.Response
}

var _ screen.Driver[*Node] = (*Driver)(nil)

// NewDriver returns a driver for the page rooted at root.
func NewDriver(root *Node) *Driver {
	return &Driver{Root: root}
}

// Document implements screen.Driver.
func (driver *Driver) Document(ctx context.Context) (*Node, error) {
	return driver.Root, nil
}

// QueryAll implements screen.Driver.
func (driver *Driver) QueryAll(ctx context.Context, scope *Node, selector string) ([]*Node, error) {
	if !scope.Attached(driver.Root) {
		return nil, ErrDetached.New("%s", scope)
	}
	return scope.QueryAll(selector)
}

// Visible implements screen.Driver.
func (driver *Driver) Visible(ctx context.Context, node *Node) (bool, error) {
	if !node.Attached(driver.Root) {
		return false, ErrDetached.New("%s", node)
	}
	return node.Visible(), nil
}

// Text implements screen.Driver.
func (driver *Driver) Text(ctx context.Context, node *Node) (string, error) {
	if !node.Attached(driver.Root) {
		return "", ErrDetached.New("%s", node)
	}
	if node.OnRead != nil {
		if err := node.OnRead(ctx); err != nil {
			return "", err
		}
	}
	return node.Content, nil
}

// Click implements screen.Driver.
func (driver *Driver) Click(ctx context.Context, node *Node) error {
	if !node.Attached(driver.Root) {
		return ErrDetached.New("%s", node)
	}

	driver.mu.Lock()
	driver.clicks = append(driver.clicks, node)
	driver.mu.Unlock()

	if node.OnClick != nil {
		return node.OnClick(ctx)
	}
	return nil
}

// ExpectResponse implements screen.Driver.
func (driver *Driver) ExpectResponse(ctx context.Context, match screen.ResponseMatch) (func() (screen.Response, error), error) {
	exp := &expectation{
		match:    match,
		received: make(chan screen.Response, 1),
	}

	driver.mu.Lock()
	driver.expectations = append(driver.expectations, exp)
	driver.expected = append(driver.expected, match)
	driver.mu.Unlock()

	return func() (screen.Response, error) {
		defer driver.forget(exp)

		select {
		case response := <-exp.received:
			return response, nil
		case <-ctx.Done():
			return screen.Response{}, ctx.Err()
		}
	}, nil
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

// Respond delivers a response to every registered expectation matching it.
// A response without a listening expectation is lost, the same way a
// browser event is lost when nobody subscribed to it.
func (driver *Driver) Respond(response screen.Response) {
	driver.mu.Lock()
	defer driver.mu.Unlock()

	driver.responses = append(driver.responses, response)

	remaining := driver.expectations[:0:0]
	for _, exp := range driver.expectations {
		if exp.match.Matches(response.Method, response.URL, response.Status) {
			exp.received <- response
			continue
		}
		remaining = append(remaining, exp)
	}
	driver.expectations = remaining
}

// Clicks returns the clicked nodes in order.
func (driver *Driver) Clicks() []*Node {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	return append([]*Node(nil), driver.clicks...)
}

// Expected returns every match that was registered with ExpectResponse.
func (driver *Driver) Expected() []screen.ResponseMatch {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	return append([]screen.ResponseMatch(nil), driver.expected...)
}

// Responses returns every response delivered with Respond.
func (driver *Driver) Responses() []screen.Response {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	return append([]screen.Response(nil), driver.responses...)
}

// Screen is a screen.Screen over an in-memory page. Idle calls are recorded
// instead of sleeping.
type Screen struct {
	*screen.Engine[*Node]
	Driver *Driver

	mu    sync.Mutex
	idles []time.Duration
}

// New returns a Screen for the page rooted at root, with short timeouts
// suited for unit tests.
func New(t testing.TB, root *Node) *Screen {
	return NewWithConfig(t, root, screen.Config{
		Timeout:      time.Second,
		PollInterval: 5 * time.Millisecond,
	})
}

// NewWithConfig returns a Screen for the page rooted at root.
func NewWithConfig(t testing.TB, root *Node, config screen.Config) *Screen {
	driver := NewDriver(root)
	return &Screen{
		Engine: screen.NewEngine[*Node](zaptest.NewLogger(t), driver, config),
		Driver: driver,
	}
}

// Idle implements screen.Screen.
func (s *Screen) Idle(ctx context.Context, duration time.Duration) error {
	s.mu.Lock()
	s.idles = append(s.idles, duration)
	s.mu.Unlock()
	return ctx.Err()
}

// Idles returns the recorded idle durations.
func (s *Screen) Idles() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.idles...)
}
