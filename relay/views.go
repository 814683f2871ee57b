// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package relay

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/hashicorp/bnet-relay/oauth"
)

//go:embed templates/*.html
var templateFS embed.FS

// views holds the parsed pages, one template set per page so each page can
// define its own content around the shared header and footer.
type views struct {
	index   *template.Template
	success *template.Template
	failure *template.Template
}

func newViews() (*views, error) {
	const op = "relay.newViews"
	parse := func(page string) (*template.Template, error) {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, page, err)
		}
		return t.Lookup(page), nil
	}
	var v views
	var err error
	if v.index, err = parse("index.html"); err != nil {
		return nil, err
	}
	if v.success, err = parse("success.html"); err != nil {
		return nil, err
	}
	if v.failure, err = parse("error.html"); err != nil {
		return nil, err
	}
	return &v, nil
}

type indexPage struct {
	Title        string
	AuthorizeURL string
}

type successPage struct {
	Title      string
	Message    string
	Characters []oauth.Character
}

type errorPage struct {
	Title   string
	Message string
}

// render executes t into a buffer first so a template error never leaves a
// half written page behind.
func render(w http.ResponseWriter, t *template.Template, status int, data interface{}) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
