// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package web renders the server's HTML pages.
//
// Every page is parsed together with layout.html and executed with a data
// map assembled from the registered context processors followed by the
// handler's own values, so values shared by all pages (popular locations,
// event types) are available without each handler fetching them.
//
// A template value that is absent renders as empty text. Setting
// StrictUndefined turns an absent value into an execution error instead,
// which is useful while developing templates.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sync"

	"github.com/simarsingh24/open-event-server/internal/logging"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const layoutFile = "layout.html"

// ErrUnknownTemplate is returned by Render for a page that was not parsed.
var ErrUnknownTemplate = errors.New("web: unknown template")

// ContextProcessor supplies values merged into every page's data. A
// processor error is logged and its values are omitted.
type ContextProcessor func(ctx context.Context) (map[string]any, error)

// Options configures a Renderer.
type Options struct {
	// Dir loads templates from disk instead of the embedded set.
	Dir string
	// StrictUndefined makes a missing value an execution error.
	StrictUndefined bool
	// StaticURL prefixes asset paths passed to the static helper.
	StaticURL string
}

type namedProcessor struct {
	name string
	fn   ContextProcessor
}

// Renderer executes named pages.
type Renderer struct {
	pages      map[string]*template.Template
	mu         sync.RWMutex
	processors []namedProcessor
	staticURL  string
}

// NewRenderer parses every page in the template set.
func NewRenderer(opts Options) (*Renderer, error) {
	var fsys fs.FS
	if opts.Dir != "" {
		fsys = os.DirFS(opts.Dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded templates: %w", err)
		}
		fsys = sub
	}
	if opts.StaticURL == "" {
		opts.StaticURL = "/static/"
	}

	missingKey := "missingkey=default"
	if opts.StrictUndefined {
		missingKey = "missingkey=error"
	}

	base, err := template.New(layoutFile).
		Option(missingKey).
		Funcs(funcMap(opts.StaticURL)).
		ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		page, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		if _, err := page.ParseFS(fsys, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = page
	}

	logging.Debug().Int("pages", len(pages)).Bool("strict", opts.StrictUndefined).Str("dir", opts.Dir).Msg("Templates loaded")
	return &Renderer{pages: pages, staticURL: opts.StaticURL}, nil
}

// Register adds a context processor. Processors run in registration order;
// later ones override earlier keys.
func (r *Renderer) Register(name string, p ContextProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, namedProcessor{name: name, fn: p})
}

// Has reports whether page was parsed.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Context runs every processor and returns the merged values.
func (r *Renderer) Context(ctx context.Context) map[string]any {
	r.mu.RLock()
	processors := r.processors
	r.mu.RUnlock()

	data := make(map[string]any)
	for _, p := range processors {
		values, err := p.fn(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("processor", p.name).Msg("Template context processor failed")
			continue
		}
		for k, v := range values {
			data[k] = v
		}
	}
	return data
}

// Render executes page with the processor context overlaid by data and
// writes it with status. Nothing is written if execution fails.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data map[string]any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, page)
	}

	merged := r.Context(req.Context())
	merged["request_path"] = req.URL.Path
	merged["static_url"] = r.staticURL
	for k, v := range data {
		merged[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutFile, merged); err != nil {
		return fmt.Errorf("failed to render %s: %w", path.Base(page), err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(req.Context()).Debug().Err(err).Str("page", page).Msg("Client went away during render")
	}
	return nil
}
