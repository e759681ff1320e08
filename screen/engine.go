// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package screen

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storj.io/common/sync2"
)

// Driver is the minimal set of node operations a browser backend provides.
//
// N is the backend's element handle type.
type Driver[N any] interface {
	// Document returns the root node queries start from.
	Document(ctx context.Context) (N, error)
	// QueryAll returns all descendants of scope matching the css selector.
	QueryAll(ctx context.Context, scope N, selector string) ([]N, error)
	// Visible returns whether the node is rendered and visible.
	Visible(ctx context.Context, node N) (bool, error)
	// Text returns the text the node displays.
	Text(ctx context.Context, node N) (string, error)
	// Click clicks the node.
	Click(ctx context.Context, node N) error
	// ExpectResponse starts listening for a response matching match. When it
	// returns the listener is active. The returned wait blocks until the
	// response arrives or ctx is done, and returns promptly once ctx is
	// canceled.
	ExpectResponse(ctx context.Context, match ResponseMatch) (wait func() (Response, error), err error)
}

// Engine implements Screen on top of a Driver.
type Engine[N any] struct {
	log    *zap.Logger
	driver Driver[N]
	config Config
}

var _ Screen = (*Engine[struct{}])(nil)

// NewEngine returns a new Engine.
func NewEngine[N any](log *zap.Logger, driver Driver[N], config Config) *Engine[N] {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	return &Engine[N]{
		log:    log,
		driver: driver,
		config: config,
	}
}

// Config returns the wait bounds of the engine.
func (engine *Engine[N]) Config() Config { return engine.config }

// Count implements Screen.
func (engine *Engine[N]) Count(ctx context.Context, loc Locator) (_ int, err error) {
	defer mon.Task()(&ctx)(&err)

	nodes, err := engine.resolve(ctx, loc)
	if err != nil {
		return 0, Error.New("counting %s: %w", loc, err)
	}
	return len(nodes), nil
}

// WaitVisible implements Screen.
func (engine *Engine[N]) WaitVisible(ctx context.Context, loc Locator) (err error) {
	defer mon.Task()(&ctx)(&err)

	return engine.wait(ctx, "waiting for "+loc.String()+" to be visible", func(ctx context.Context) (bool, error) {
		node, ok, err := engine.single(ctx, loc)
		if err != nil || !ok {
			return false, err
		}
		return engine.driver.Visible(ctx, node)
	})
}

// Text implements Screen.
func (engine *Engine[N]) Text(ctx context.Context, loc Locator) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	var text string
	err = engine.wait(ctx, "reading text of "+loc.String(), func(ctx context.Context) (bool, error) {
		node, ok, err := engine.single(ctx, loc)
		if err != nil || !ok {
			return false, err
		}
		text, err = engine.driver.Text(ctx, node)
		return err == nil, err
	})
	return text, err
}

// Click implements Screen.
func (engine *Engine[N]) Click(ctx context.Context, loc Locator) (err error) {
	defer mon.Task()(&ctx)(&err)

	return engine.wait(ctx, "clicking "+loc.String(), func(ctx context.Context) (bool, error) {
		node, ok, err := engine.single(ctx, loc)
		if err != nil || !ok {
			return false, err
		}
		visible, err := engine.driver.Visible(ctx, node)
		if err != nil || !visible {
			return false, err
		}
		if err := engine.driver.Click(ctx, node); err != nil {
			return false, err
		}
		engine.log.Debug("clicked", zap.Stringer("locator", loc))
		return true, nil
	})
}

// WaitForResponse implements Screen.
func (engine *Engine[N]) WaitForResponse(ctx context.Context, match ResponseMatch, trigger func(ctx context.Context) error) (_ Response, err error) {
	defer mon.Task()(&ctx)(&err)

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, engine.config.Timeout)
	defer cancel()

	wait, err := engine.driver.ExpectResponse(ctx, match)
	if err != nil {
		return Response{}, Error.New("expecting %s: %w", match, err)
	}

	if err := trigger(ctx); err != nil {
		cancel()
		_, _ = wait()
		return Response{}, err
	}

	response, err := wait()
	if err != nil {
		if ctx.Err() != nil && parent.Err() == nil {
			return Response{}, ErrTimeout.New("waiting for response %s: exceeded %s", match, engine.config.Timeout)
		}
		return Response{}, Error.New("waiting for response %s: %w", match, err)
	}

	engine.log.Debug("observed response",
		zap.String("method", response.Method),
		zap.String("url", response.URL),
		zap.Int("status", response.Status))
	return response, nil
}

// Idle implements Screen.
func (engine *Engine[N]) Idle(ctx context.Context, duration time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)

	if !sync2.Sleep(ctx, duration) {
		return ctx.Err()
	}
	return nil
}

// wait polls check until it reports done. Errors from check are retried
// until the timeout, except for strict mode violations.
func (engine *Engine[N]) wait(ctx context.Context, what string, check func(ctx context.Context) (bool, error)) error {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, engine.config.Timeout)
	defer cancel()

	var lastErr error
	for {
		done, err := check(ctx)
		switch {
		case ErrStrict.Has(err):
			return err
		case err != nil:
			lastErr = err
		case done:
			return nil
		}

		if !sync2.Sleep(ctx, engine.config.PollInterval) {
			break
		}
	}

	if parent.Err() != nil {
		return parent.Err()
	}
	if lastErr != nil && !errors.Is(lastErr, context.DeadlineExceeded) {
		return ErrTimeout.New("%s: exceeded %s: last error: %v", what, engine.config.Timeout, lastErr)
	}
	return ErrTimeout.New("%s: exceeded %s", what, engine.config.Timeout)
}

// single resolves loc and returns the only match. It reports false when
// there is no match yet.
func (engine *Engine[N]) single(ctx context.Context, loc Locator) (node N, ok bool, err error) {
	nodes, err := engine.resolve(ctx, loc)
	if err != nil {
		return node, false, err
	}
	switch len(nodes) {
	case 0:
		return node, false, nil
	case 1:
		return nodes[0], true, nil
	default:
		return node, false, ErrStrict.New("%s resolved to %d elements", loc, len(nodes))
	}
}

// resolve applies the locator operations in order, starting from the document.
func (engine *Engine[N]) resolve(ctx context.Context, loc Locator) ([]N, error) {
	doc, err := engine.driver.Document(ctx)
	if err != nil {
		return nil, err
	}

	nodes := []N{doc}
	for _, o := range loc.ops {
		switch o.kind {
		case opQuery:
			var next []N
			for _, scope := range nodes {
				found, err := engine.driver.QueryAll(ctx, scope, o.selector)
				if err != nil {
					return nil, err
				}
				next = append(next, found...)
			}
			nodes = next

		case opVisible:
			visible := nodes[:0:0]
			for _, node := range nodes {
				ok, err := engine.driver.Visible(ctx, node)
				if err != nil {
					return nil, err
				}
				if ok {
					visible = append(visible, node)
				}
			}
			nodes = visible

		case opNth:
			index := o.index
			if index < 0 {
				index += len(nodes)
			}
			if index < 0 || index >= len(nodes) {
				nodes = nil
			} else {
				nodes = nodes[index : index+1]
			}

		case opLast:
			if len(nodes) > 0 {
				nodes = nodes[len(nodes)-1:]
			}
		}

		if len(nodes) == 0 {
			return nil, nil
		}
	}
	return nodes, nil
}
