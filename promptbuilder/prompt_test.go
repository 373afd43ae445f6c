/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"strings"
	"testing"
)

func TestBuildSubstitutesBindings(t *testing.T) {
	p, err := NewPrompt("Role: {{role}}\nInput: {{input}}")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}

	p, err = p.BindStringLiteral("role", "repair agent")
	if err != nil {
		t.Fatalf("BindStringLiteral() error = %v", err)
	}
	p, err = p.BindJSON("input", "fatal error: main.c:42")
	if err != nil {
		t.Fatalf("BindJSON() error = %v", err)
	}

	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(got, "Role: repair agent") {
		t.Errorf("Build() = %q, missing literal binding", got)
	}
	if !strings.Contains(got, `"fatal error: main.c:42"`) {
		t.Errorf("Build() = %q, missing JSON binding", got)
	}
}

func TestBuildFailsOnUnbound(t *testing.T) {
	p, err := NewPrompt("{{left}} and {{right}}")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}
	p = p.MustBindStringLiteral("left", "bound")

	if _, err := p.Build(); err == nil {
		t.Error("Build() succeeded with unbound placeholder, want error")
	}
}

func TestBindUnknownPlaceholder(t *testing.T) {
	p, err := NewPrompt("{{known}}")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}
	if _, err := p.BindStringLiteral("unknown", "value"); err == nil {
		t.Error("BindStringLiteral(unknown) succeeded, want error")
	}
}

func TestDoubleBindRejected(t *testing.T) {
	p, err := NewPrompt("{{name}}")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}
	p = p.MustBindStringLiteral("name", "first")
	if _, err := p.BindStringLiteral("name", "second"); err == nil {
		t.Error("second bind succeeded, want error")
	}
}

func TestBindingsAreImmutable(t *testing.T) {
	base, err := NewPrompt("{{value}}")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}
	a := base.MustBindStringLiteral("value", "a")
	b := base.MustBindStringLiteral("value", "b")

	gotA, err := a.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	gotB, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if gotA != "a" || gotB != "b" {
		t.Errorf("Build() = %q, %q; want \"a\", \"b\"", gotA, gotB)
	}
}

func TestNoTransitiveSubstitution(t *testing.T) {
	p, err := NewPrompt("{{outer}}")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}
	p = p.MustBindStringLiteral("outer", "{{inner}}")

	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != "{{inner}}" {
		t.Errorf("Build() = %q, want the bound text verbatim", got)
	}
}

func TestMalformedTemplates(t *testing.T) {
	for _, tmpl := range []string{"{{unclosed", "{{bad name}}", "{{1digit}}"} {
		if _, err := NewPrompt(stringLiteral(tmpl)); err == nil {
			t.Errorf("NewPrompt(%q) succeeded, want error", tmpl)
		}
	}
}
