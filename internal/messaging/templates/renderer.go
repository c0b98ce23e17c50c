package templates

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

var funcs = template.FuncMap{
	"brl":    formatBRL,
	"orDash": orDash,
}

type cachedTemplate struct {
	text string
	tmpl *template.Template
}

// Renderer renders small text templates for outbound messaging. Parsed
// templates are cached by name; changing the text under a name reparses it.
type Renderer struct {
	mu    sync.Mutex
	cache map[string]cachedTemplate
}

// NewRenderer creates a renderer with an empty cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[string]cachedTemplate)}
}

// Render compiles the provided template text with strict missing-key semantics.
func (r *Renderer) Render(name, text string, data any) (string, error) {
	if text == "" {
		return "", fmt.Errorf("templates: template text required")
	}
	t, err := r.lookup(name, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) lookup(name, text string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = make(map[string]cachedTemplate)
	}
	if c, ok := r.cache[name]; ok && c.text == text {
		return c.tmpl, nil
	}
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	r.cache[name] = cachedTemplate{text: text, tmpl: t}
	return t, nil
}

func formatBRL(amount float64) string {
	return strings.Replace(fmt.Sprintf("R$ %.2f", amount), ".", ",", 1)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
