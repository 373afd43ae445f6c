/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"encoding/json"
	"fmt"
	"maps"
)

// stringLiteral only accepts untyped string constants, so template text and
// literal bindings must come from the developer, not from runtime data.
type stringLiteral string

// binding produces the replacement text for one placeholder.
type binding interface {
	value() (string, error)
}

type unboundBinding struct{ name string }

func (b *unboundBinding) value() (string, error) {
	return "", fmt.Errorf("placeholder %q is unbound", b.name)
}

type literalBinding struct{ val string }

func (b *literalBinding) value() (string, error) { return b.val, nil }

type jsonBinding struct{ data any }

func (b *jsonBinding) value() (string, error) {
	out, err := json.MarshalIndent(b.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON binding: %w", err)
	}
	return string(out), nil
}

// Prompt is a template with bindable placeholders.
type Prompt struct {
	template string
	bindings map[string]binding
}

// NewPrompt parses a template literal and records its placeholders.
func NewPrompt(template stringLiteral) (*Prompt, error) {
	bindings := make(map[string]binding)
	tmpl, err := walkTemplate(string(template), func(name string) (string, error) {
		if _, exists := bindings[name]; !exists {
			bindings[name] = &unboundBinding{name: name}
		}
		return fmt.Sprintf("{{%s}}", name), nil
	})
	if err != nil {
		return nil, err
	}
	return &Prompt{template: tmpl, bindings: bindings}, nil
}

func (p *Prompt) bind(name string, b binding) (*Prompt, error) {
	existing, ok := p.bindings[name]
	if !ok {
		return nil, fmt.Errorf("placeholder %q does not exist in template", name)
	}
	if _, unbound := existing.(*unboundBinding); !unbound {
		return nil, fmt.Errorf("placeholder %q is already bound", name)
	}
	next := &Prompt{template: p.template, bindings: maps.Clone(p.bindings)}
	next.bindings[name] = b
	return next, nil
}

// BindStringLiteral binds a developer-controlled literal string.
func (p *Prompt) BindStringLiteral(name string, value stringLiteral) (*Prompt, error) {
	return p.bind(name, &literalBinding{val: string(value)})
}

// BindJSON binds arbitrary data by marshaling it as indented JSON.
// This is the only way to get runtime data into a prompt.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	return p.bind(name, &jsonBinding{data: data})
}

// MustBindStringLiteral is BindStringLiteral that panics on error, for
// bindings whose validity is established at development time.
func (p *Prompt) MustBindStringLiteral(name string, value stringLiteral) *Prompt {
	next, err := p.BindStringLiteral(name, value)
	if err != nil {
		panic(err)
	}
	return next
}

// MustBindJSON is BindJSON that panics on error.
func (p *Prompt) MustBindJSON(name string, data any) *Prompt {
	next, err := p.BindJSON(name, data)
	if err != nil {
		panic(err)
	}
	return next
}

// Build renders the final prompt, failing if any placeholder is unbound.
// Binding values are substituted in a single pass, so a value containing
// {{...}} text is never re-expanded.
func (p *Prompt) Build() (string, error) {
	values := make(map[string]string, len(p.bindings))
	for name, b := range p.bindings {
		val, err := b.value()
		if err != nil {
			return "", err
		}
		values[name] = val
	}
	return walkTemplate(p.template, func(name string) (string, error) {
		val, ok := values[name]
		if !ok {
			return "", fmt.Errorf("internal error: no value for placeholder %q", name)
		}
		return val, nil
	})
}
