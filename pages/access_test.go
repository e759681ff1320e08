// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package pages_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/common/testcontext"
	"storj.io/uipages/pages"
	"storj.io/uipages/screen"
	"storj.io/uipages/screen/screentest"
)

var roles = []string{"owner", "creator", "editor", "commenter", "viewer"}

// panel is an in-memory access settings panel, behaving like the real one:
// opening a role select shows a body level dropdown, picking a different
// role updates the badge and posts the change.
type panel struct {
	root   *screentest.Node
	list   *screentest.Node
	screen *screentest.Screen
	view   *pages.ProjectView

	rows    []*screentest.Node
	emails  []*screentest.Node
	selects []*screentest.Node
	badges  []*screentest.Node
	menus   []*screentest.Node

	// silent disables the update request.
	silent bool
}

type member struct {
	name, email, role string
	label             string
}

func newPanel(t *testing.T, config screen.Config, members ...member) *panel {
	p := &panel{}

	list := screentest.El(".nc-collaborators-list")
	p.list = list
	p.root = screentest.El("",
		screentest.El(".nc-project-view",
			screentest.El(".nc-access-settings-view", list),
		),
	)

	for i, m := range members {
		label := m.label
		if label == "" {
			label = m.name + "\n" + m.email
		}

		badge := screentest.El("span.badge-text").WithText(m.role)
		sel := screentest.El(".nc-collaborator-role-select", badge)
		email := screentest.El(".email").WithText(label)
		row := screentest.El(".nc-collaborators-list-row", email, sel)
		list.Append(row)

		p.rows = append(p.rows, row)
		p.emails = append(p.emails, email)
		p.selects = append(p.selects, sel)
		p.badges = append(p.badges, badge)
		p.menus = append(p.menus, nil)

		index, address := i, m.email
		sel.WithClick(func(ctx context.Context) error {
			p.open(index, address)
			return nil
		})
	}

	p.screen = screentest.NewWithConfig(t, p.root, config)
	p.view = pages.NewProjectView(zaptest.NewLogger(t), p.screen, pages.Config{})
	return p
}

func (p *panel) open(index int, email string) {
	for _, menu := range p.menus {
		if menu != nil {
			menu.Hidden = true
		}
	}

	if menu := p.menus[index]; menu != nil {
		menu.Hidden = false
		return
	}

	menu := screentest.El(".nc-role-select-dropdown")
	for _, role := range roles {
		role := role
		option := screentest.El(".nc-role-select-" + role).WithText(role)
		option.WithClick(func(ctx context.Context) error {
			menu.Hidden = true
			badge := p.badges[index]
			if strings.EqualFold(badge.Content, role) {
				return nil
			}
			badge.Content = strings.ToUpper(role[:1]) + role[1:]
			if !p.silent {
				p.screen.Driver.Respond(screen.Response{
					Method: "POST",
					URL:    "http://localhost/api/v1/projects/p1/users/" + email,
					Status: 200,
				})
			}
			return nil
		})
		menu.Append(option)
	}
	p.root.Append(menu)
	p.menus[index] = menu
}

func (p *panel) settings() *pages.AccessSettings {
	return p.view.AccessSettings()
}

var unit = screen.Config{Timeout: time.Second, PollInterval: 2 * time.Millisecond}

var twoMembers = []member{
	{name: "Alice", email: "a@x.com", role: "Viewer"},
	{name: "Bob", email: "b@x.com", role: "Editor"},
}

func TestSetRoleChangesRole(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	err := p.settings().SetRole(ctx, "b@x.com", "Owner", pages.SetRoleOptions{})
	require.NoError(t, err)

	clicks := p.screen.Driver.Clicks()
	require.Len(t, clicks, 2)
	assert.Same(t, p.selects[1], clicks[0], "dropdown must be opened on the matching row only")
	assert.True(t, clicks[1].HasClass("nc-role-select-owner"))
	assert.Nil(t, p.menus[0], "first row must not be touched")

	require.Equal(t, []screen.ResponseMatch{{Path: "/users", Methods: []string{"POST"}}}, p.screen.Driver.Expected())
	require.Len(t, p.screen.Driver.Responses(), 1)
	require.Empty(t, p.screen.Idles())

	assert.Equal(t, "Owner", p.badges[1].Content)
	assert.Equal(t, "Viewer", p.badges[0].Content)
}

func TestSetRoleUnknownEmail(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	start := time.Now()
	err := p.settings().SetRole(ctx, "c@x.com", "Owner", pages.SetRoleOptions{})
	require.NoError(t, err)
	require.Less(t, time.Since(start), unit.Timeout)

	require.Empty(t, p.screen.Driver.Clicks())
	require.Empty(t, p.screen.Driver.Expected())
	require.Empty(t, p.screen.Idles())
}

func TestSetRoleUnchanged(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	err := p.settings().SetRole(ctx, "b@x.com", "Editor", pages.SetRoleOptions{})
	require.NoError(t, err)

	require.Empty(t, p.screen.Driver.Expected(), "no request is sent for an unchanged role")
	require.Equal(t, []time.Duration{500 * time.Millisecond}, p.screen.Idles())

	clicks := p.screen.Driver.Clicks()
	require.Len(t, clicks, 2)
	assert.Same(t, p.selects[1], clicks[0])
	assert.True(t, clicks[1].HasClass("nc-role-select-editor"))
	assert.Empty(t, p.screen.Driver.Responses())
}

func TestSetRoleWithoutValidation(t *testing.T) {
	ctx := testcontext.New(t)

	for _, role := range []string{"Owner", "Editor"} {
		p := newPanel(t, unit, twoMembers...)

		err := p.settings().SetRole(ctx, "b@x.com", role, pages.SetRoleOptions{SkipNetworkValidation: true})
		require.NoError(t, err, role)

		require.Empty(t, p.screen.Driver.Expected(), role)
		require.Equal(t, []time.Duration{500 * time.Millisecond}, p.screen.Idles(), role)
		require.Len(t, p.screen.Driver.Clicks(), 2, role)
		assert.Equal(t, role, p.badges[1].Content, role)
	}
}

func TestSetRoleSettleDelay(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)
	view := pages.NewProjectView(zaptest.NewLogger(t), p.screen, pages.Config{SettleDelay: 3 * time.Second})

	err := view.AccessSettings().SetRole(ctx, "a@x.com", "viewer", pages.SetRoleOptions{})
	require.NoError(t, err)
	require.Equal(t, []time.Duration{3 * time.Second}, p.screen.Idles())
}

func TestSetRoleCaseInsensitiveRole(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	err := p.settings().SetRole(ctx, "a@x.com", "EDITOR", pages.SetRoleOptions{})
	require.NoError(t, err)

	clicks := p.screen.Driver.Clicks()
	require.Len(t, clicks, 2)
	assert.True(t, clicks[1].HasClass("nc-role-select-editor"))
	assert.Len(t, p.screen.Driver.Expected(), 1)
	assert.Equal(t, "Editor", p.badges[0].Content)

	// badge matching ignores case as well
	err = p.settings().SetRole(ctx, "a@x.com", "editor", pages.SetRoleOptions{})
	require.NoError(t, err)
	assert.Len(t, p.screen.Driver.Expected(), 1)
	assert.Len(t, p.screen.Idles(), 1)
}

func TestSetRoleEmailIsSecondLine(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit,
		member{email: "other@x.com", role: "Viewer", label: "b@x.com\nother@x.com"},
		member{email: "b@x.com", role: "Viewer", label: "b@x.com"},
		member{email: "B@x.com", role: "Viewer", label: "Bob\nB@x.com"},
	)

	err := p.settings().SetRole(ctx, "b@x.com", "Owner", pages.SetRoleOptions{})
	require.NoError(t, err)
	require.Empty(t, p.screen.Driver.Clicks())
	require.Empty(t, p.screen.Driver.Expected())
}

func TestSetRoleFirstMatchOnly(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit,
		member{name: "Bob", email: "b@x.com", role: "Viewer"},
		member{name: "Bob again", email: "b@x.com", role: "Viewer"},
	)

	err := p.settings().SetRole(ctx, "b@x.com", "Commenter", pages.SetRoleOptions{})
	require.NoError(t, err)

	clicks := p.screen.Driver.Clicks()
	require.Len(t, clicks, 2)
	assert.Same(t, p.selects[0], clicks[0])
	assert.Equal(t, "Commenter", p.badges[0].Content)
	assert.Equal(t, "Viewer", p.badges[1].Content)
}

func TestSetRoleStopsAtMatch(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	reads := 0
	p.emails[1].WithRead(func(ctx context.Context) error {
		reads++
		return errors.New("row is being re-rendered")
	})

	err := p.settings().SetRole(ctx, "a@x.com", "Owner", pages.SetRoleOptions{})
	require.NoError(t, err)
	require.Zero(t, reads, "rows after the match must not be read")
	assert.Equal(t, "Owner", p.badges[0].Content)

	// a scan reaching the broken row fails
	err = p.settings().SetRole(ctx, "b@x.com", "Owner", pages.SetRoleOptions{})
	require.True(t, screen.ErrTimeout.Has(err), err)
	require.Contains(t, err.Error(), "row is being re-rendered")
	require.NotZero(t, reads)
}

func TestSetRoleCountsRowsOnce(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	late := screentest.El(".nc-collaborators-list-row",
		screentest.El(".email").WithText("Late\nlate@x.com"),
		screentest.El(".nc-collaborator-role-select", screentest.El("span.badge-text").WithText("Viewer")),
	)
	lateReads := 0
	late.Children[0].WithRead(func(ctx context.Context) error {
		lateReads++
		return nil
	})

	// the row shows up while the list is being scanned
	p.emails[0].WithRead(func(ctx context.Context) error {
		if !late.Attached(p.root) {
			p.list.Append(late)
		}
		return nil
	})

	err := p.settings().SetRole(ctx, "late@x.com", "Owner", pages.SetRoleOptions{})
	require.NoError(t, err)
	require.True(t, late.Attached(p.root))
	require.Zero(t, lateReads)
	require.Empty(t, p.screen.Driver.Clicks())
	require.Empty(t, p.screen.Driver.Expected())

	// a new call sees it
	collaborators, err := p.settings().Collaborators(ctx)
	require.NoError(t, err)
	require.Len(t, collaborators, 3)
	require.Equal(t, 1, lateReads)
}

func TestSetRoleIgnoresStaleMenus(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)
	settings := p.settings()

	require.NoError(t, settings.SetRole(ctx, "a@x.com", "Creator", pages.SetRoleOptions{}))
	require.NoError(t, settings.SetRole(ctx, "b@x.com", "Creator", pages.SetRoleOptions{}))

	// the first menu stays in the page, hidden
	require.NotNil(t, p.menus[0])
	require.True(t, p.menus[0].Hidden)

	clicks := p.screen.Driver.Clicks()
	require.Len(t, clicks, 4)
	assert.Same(t, p.menus[1].Children[1], clicks[3])
	assert.Equal(t, "Creator", p.badges[0].Content)
	assert.Equal(t, "Creator", p.badges[1].Content)
	assert.Len(t, p.screen.Driver.Responses(), 2)
}

func TestSetRoleNoRows(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, screen.Config{Timeout: 50 * time.Millisecond, PollInterval: 2 * time.Millisecond})

	err := p.settings().SetRole(ctx, "a@x.com", "Owner", pages.SetRoleOptions{})
	require.True(t, screen.ErrTimeout.Has(err), err)
	require.Contains(t, err.Error(), "nc-collaborators-list-row")
}

func TestSetRoleMissingRequest(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, screen.Config{Timeout: 50 * time.Millisecond, PollInterval: 2 * time.Millisecond}, twoMembers...)
	p.silent = true

	err := p.settings().SetRole(ctx, "a@x.com", "Owner", pages.SetRoleOptions{})
	require.True(t, screen.ErrTimeout.Has(err), err)
	require.Contains(t, err.Error(), "/users")

	// the option was still clicked exactly once
	require.Len(t, p.screen.Driver.Clicks(), 2)
}

func TestSetRoleUnknownRole(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, screen.Config{Timeout: 50 * time.Millisecond, PollInterval: 2 * time.Millisecond}, twoMembers...)

	err := p.settings().SetRole(ctx, "a@x.com", "Janitor", pages.SetRoleOptions{})
	require.True(t, screen.ErrTimeout.Has(err), err)
	require.Contains(t, err.Error(), "nc-role-select-janitor")
}

func TestCollaborators(t *testing.T) {
	ctx := testcontext.New(t)

	p := newPanel(t, unit, twoMembers...)

	collaborators, err := p.settings().Collaborators(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff([]pages.Collaborator{
		{Email: "a@x.com", Role: "Viewer"},
		{Email: "b@x.com", Role: "Editor"},
	}, collaborators))

	require.Empty(t, p.screen.Driver.Clicks())
}

func TestParseEmail(t *testing.T) {
	for _, tc := range []struct {
		label string
		email string
		ok    bool
	}{
		{"Alice\na@x.com", "a@x.com", true},
		{"Alice\na@x.com\nPending", "a@x.com", true},
		{"\na@x.com", "a@x.com", true},
		{"a@x.com", "", false},
		{"", "", false},
	} {
		email, ok := pages.ParseEmail(tc.label)
		assert.Equal(t, tc.ok, ok, tc.label)
		assert.Equal(t, tc.email, email, tc.label)
	}
}

func TestAccessSettingsGet(t *testing.T) {
	p := newPanel(t, unit)
	settings := p.settings()

	require.Equal(t, "css=.nc-access-settings-view", settings.Get().String())
	require.Same(t, p.view, settings.Base())
	require.Same(t, p.screen, p.view.Screen())
}
