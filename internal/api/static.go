// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"io/fs"
	"net/http"
	"strings"
)

// layeredDir serves a file from the first directory that has it. Directory
// listings are never served.
type layeredDir []http.Dir

func newLayeredDir(dirs ...string) layeredDir {
	layers := make(layeredDir, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		layers = append(layers, http.Dir(d))
	}
	return layers
}

// Open implements http.FileSystem.
func (l layeredDir) Open(name string) (http.File, error) {
	for _, dir := range l {
		f, err := dir.Open(name)
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			_ = f.Close()
			continue
		}
		return f, nil
	}
	return nil, fs.ErrNotExist
}

// staticHandler serves prefix from dirs. Misses go to notFound so they are
// negotiated like any other unknown path.
func staticHandler(prefix string, dirs []string, notFound http.HandlerFunc) http.Handler {
	files := newLayeredDir(dirs...)
	fileServer := http.StripPrefix(prefix, http.FileServer(files))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := "/" + strings.TrimPrefix(r.URL.Path, prefix)
		f, err := files.Open(name)
		if err != nil {
			notFound(w, r)
			return
		}
		_ = f.Close()
		fileServer.ServeHTTP(w, r)
	})
}
