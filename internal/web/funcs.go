// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package web

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// funcMap returns the helpers available to every page.
func funcMap(staticURL string) template.FuncMap {
	return template.FuncMap{
		// Date/time formatting
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"formatDateDefault": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
		"formatDateRange": func(start, end time.Time) string {
			if start.Year() == end.Year() && start.Month() == end.Month() && start.Day() == end.Day() {
				return fmt.Sprintf("%s, %s - %s", start.Format("January 2, 2006"), start.Format("3:04 PM"), end.Format("3:04 PM"))
			}
			return fmt.Sprintf("%s - %s", start.Format("January 2, 2006"), end.Format("January 2, 2006"))
		},
		"now": time.Now,

		// String manipulation
		"truncate": func(s string, maxLen int) string {
			if maxLen < 4 || len(s) <= maxLen {
				return s
			}
			return s[:maxLen-3] + "..."
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"trim":  strings.TrimSpace,
		"join":  strings.Join,

		// Static assets
		"static": func(path string) string {
			return staticURL + strings.TrimPrefix(path, "/")
		},

		// Conditional helpers
		"default": func(def, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 || val == false {
				return def
			}
			return val
		},
	}
}
