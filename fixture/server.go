// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package fixture implements a small web app with a project access settings
// panel, used as the page under test by browser tests.
package fixture

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/common/errs2"
)

// Roles lists the roles a collaborator can have, in menu order.
var Roles = []string{"owner", "creator", "editor", "commenter", "viewer"}

//go:embed panel.html
var panelHTML string

var panelTemplate = template.Must(template.New("panel").Funcs(template.FuncMap{
	"title": RoleTitle,
}).Parse(panelHTML))

// Config defines configuration for the fixture server.
type Config struct {
	Address string `help:"fixture http listening address" default:"127.0.0.1:10100" testDefault:"127.0.0.1:0"`
	Project string `help:"project id served by the fixture" default:"p1"`
}

// Collaborator is a member of the served project.
type Collaborator struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RoleUpdate is an accepted role change.
type RoleUpdate struct {
	Email string `json:"email"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Server serves the access settings panel of a single project.
type Server struct {
	log *zap.Logger

	listener net.Listener
	server   http.Server

	config Config

	mu            sync.Mutex
	collaborators []Collaborator
	updates       []RoleUpdate
}

// NewServer returns a new fixture Server.
func NewServer(log *zap.Logger, listener net.Listener, config Config, collaborators []Collaborator) *Server {
	server := &Server{
		log: log,

		listener: listener,

		config: config,
	}
	for _, c := range collaborators {
		c.Role = strings.ToLower(c.Role)
		server.collaborators = append(server.collaborators, c)
	}

	root := mux.NewRouter()
	root.HandleFunc("/", server.panel).Methods("GET")

	api := root.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/projects/{project}/users", server.listUsers).Methods("GET")
	api.HandleFunc("/projects/{project}/users/{email}", server.updateRole).Methods("POST")

	server.server.Handler = root
	return server
}

// URL returns the address of the panel page.
func (server *Server) URL() string {
	return "http://" + server.listener.Addr().String() + "/"
}

// Run starts the fixture endpoint.
func (server *Server) Run(ctx context.Context) error {
	if server.listener == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		return Error.Wrap(server.server.Shutdown(context.Background()))
	})
	group.Go(func() error {
		defer cancel()
		err := server.server.Serve(server.listener)
		if errs2.IsCanceled(err) || errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return Error.Wrap(err)
	})
	return group.Wait()
}

// Close closes server and underlying listener.
func (server *Server) Close() error {
	return Error.Wrap(server.server.Close())
}

// Collaborators returns the current collaborators.
func (server *Server) Collaborators() []Collaborator {
	server.mu.Lock()
	defer server.mu.Unlock()
	return append([]Collaborator(nil), server.collaborators...)
}

// RoleUpdates returns every accepted role change in order.
func (server *Server) RoleUpdates() []RoleUpdate {
	server.mu.Lock()
	defer server.mu.Unlock()
	return append([]RoleUpdate(nil), server.updates...)
}

func (server *Server) panel(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := panelTemplate.Execute(&buf, struct {
		Project       string
		Roles         []string
		Collaborators []Collaborator
	}{
		Project:       server.config.Project,
		Roles:         Roles,
		Collaborators: server.Collaborators(),
	})
	if err != nil {
		server.log.Error("rendering panel failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("rendering panel failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (server *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if !server.checkProject(w, r) {
		return
	}

	data, err := json.Marshal(server.Collaborators())
	if err != nil {
		sendJSONError(w, "json encoding failed", err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSONData(w, http.StatusOK, data)
}

func (server *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	if !server.checkProject(w, r) {
		return
	}

	email, ok := mux.Vars(r)["email"]
	if !ok {
		sendJSONError(w, "email missing", "", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var input struct {
		Roles string `json:"roles"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	role := strings.ToLower(input.Roles)
	if !validRole(role) {
		sendJSONError(w, "unknown role", input.Roles, http.StatusBadRequest)
		return
	}

	server.mu.Lock()
	update, found := server.setRoleLocked(email, role)
	server.mu.Unlock()

	if !found {
		sendJSONError(w, "collaborator with specified email does not exist", email, http.StatusNotFound)
		return
	}

	server.log.Info("role updated",
		zap.String("project", server.config.Project),
		zap.String("email", update.Email),
		zap.String("from", update.From),
		zap.String("to", update.To))

	data, err := json.Marshal(update)
	if err != nil {
		sendJSONError(w, "json encoding failed", err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSONData(w, http.StatusOK, data)
}

func (server *Server) setRoleLocked(email, role string) (RoleUpdate, bool) {
	for i := range server.collaborators {
		c := &server.collaborators[i]
		if c.Email != email {
			continue
		}
		update := RoleUpdate{Email: email, From: c.Role, To: role}
		c.Role = role
		server.updates = append(server.updates, update)
		return update, true
	}
	return RoleUpdate{}, false
}

func (server *Server) checkProject(w http.ResponseWriter, r *http.Request) bool {
	project, ok := mux.Vars(r)["project"]
	if !ok {
		sendJSONError(w, "project missing", "", http.StatusBadRequest)
		return false
	}
	if project != server.config.Project {
		sendJSONError(w, "project with specified id does not exist", project, http.StatusNotFound)
		return false
	}
	return true
}

func validRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleTitle returns role as shown on the badge, e.g. "Editor".
func RoleTitle(role string) string {
	if role == "" {
		return ""
	}
	role = strings.ToLower(role)
	return strings.ToUpper(role[:1]) + role[1:]
}
