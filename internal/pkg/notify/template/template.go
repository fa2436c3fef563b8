// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template is the plain text email for one notification type.
type Template struct {
	Type    string // notification type
	Subject string // subject template
	Body    string // body template
}

// TemplateEngine renders notification templates by type.
type TemplateEngine struct {
	funcMap   template.FuncMap
	mu        sync.RWMutex
	templates map[string]*compiled
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

// NewTemplateEngine returns an engine loaded with the predefined templates.
func NewTemplateEngine() *TemplateEngine {
	titleCaser := cases.Title(language.English)
	e := &TemplateEngine{
		funcMap: template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
			"title": titleCaser.String,
			"trim":  strings.TrimSpace,
			"default": func(def string, v any) string {
				if s := fmt.Sprint(v); v != nil && s != "" {
					return s
				}
				return def
			},
		},
		templates: make(map[string]*compiled),
	}
	for _, t := range predefined() {
		if err := e.Register(t); err != nil {
			panic(fmt.Sprintf("predefined template %s: %v", t.Type, err))
		}
	}
	return e
}

// Register parses t and replaces any template of the same type.
func (e *TemplateEngine) Register(t Template) error {
	if t.Type == "" {
		return fmt.Errorf("template type is required")
	}
	subject, err := template.New(t.Type + ".subject").Funcs(e.funcMap).Option("missingkey=zero").Parse(t.Subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject: %w", err)
	}
	body, err := template.New(t.Type + ".body").Funcs(e.funcMap).Option("missingkey=zero").Parse(t.Body)
	if err != nil {
		return fmt.Errorf("failed to parse body: %w", err)
	}

	e.mu.Lock()
	e.templates[t.Type] = &compiled{subject: subject, body: body}
	e.mu.Unlock()
	return nil
}

// Render renders the subject and body for kind, falling back to the
// generic template for unknown types.
func (e *TemplateEngine) Render(kind string, data map[string]any) (string, string, error) {
	e.mu.RLock()
	c, ok := e.templates[kind]
	if !ok {
		c = e.templates[TypeDefault]
	}
	e.mu.RUnlock()
	if c == nil {
		return "", "", fmt.Errorf("no template for %s", kind)
	}

	subject, err := execute(c.subject, data)
	if err != nil {
		return "", "", err
	}
	body, err := execute(c.body, data)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(subject), body, nil
}

func execute(t *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
