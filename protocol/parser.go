/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes the two directive forms.
type Kind int

const (
	// Write replaces (or creates) the file at Path with Content.
	Write Kind = iota
	// Delete removes the file at Path.
	Delete
)

// Directive is one parsed instruction extracted from model output.
type Directive struct {
	Kind    Kind
	Path    string
	Content string // empty for Delete
}

// Rejection describes a directive that was dropped instead of applied.
type Rejection struct {
	Path   string
	Reason string
}

// MinContentLength is the smallest write a directive may carry. Anything
// shorter is assumed to be a truncated or lazy rewrite.
const MinContentLength = 24

var (
	fileBlockRE   = regexp.MustCompile(`(?s)\[\[FILE:\s*([^\]\n]+?)\s*\]\]\n(.*?)\[\[ENDFILE\]\]`)
	deleteLineRE  = regexp.MustCompile(`\[\[DELETE:\s*([^\]\n]+?)\s*\]\]`)
	fenceLineRE   = regexp.MustCompile("(?m)^```[a-zA-Z0-9+_-]*[ \t]*\r?\n?")
	placeholderRE = regexp.MustCompile(`(?im)` +
		`^\s*(//|#|--|/\*)?\s*\.{3}\s*(\*/)?\s*$` + // a line that is just an ellipsis
		`|\.\.\.\s*(rest|remainder|remaining|unchanged|omitted|snip)` +
		`|rest (of the file )?(remains )?unchanged` +
		`|\[\s*elided\s*\]|<\s*elided\s*>`)
)

// dangerous substrings are never written to the repository, regardless of
// how plausible the surrounding patch looks.
var dangerous = []string{
	"rm -rf /",
	"mkfs.",
	":(){",
	"dd if=/dev/zero",
	"chmod -R 777 /",
	"> /dev/sda",
}

// Parse extracts directives from raw model output. Write directives whose
// cleaned content is too short, contains an elision placeholder, or trips the
// deny-list are returned as rejections instead.
func Parse(raw string) ([]Directive, []Rejection) {
	var directives []Directive
	var rejections []Rejection

	for _, m := range fileBlockRE.FindAllStringSubmatch(raw, -1) {
		path := strings.TrimSpace(m[1])
		content := Sanitize(m[2])

		if reason := validate(content); reason != "" {
			rejections = append(rejections, Rejection{Path: path, Reason: reason})
			continue
		}
		directives = append(directives, Directive{Kind: Write, Path: path, Content: content})
	}

	for _, m := range deleteLineRE.FindAllStringSubmatch(raw, -1) {
		directives = append(directives, Directive{Kind: Delete, Path: strings.TrimSpace(m[1])})
	}

	return directives, rejections
}

// Sanitize strips code-fence artifacts the model was told not to emit: a
// leading language-tagged fence line and any embedded fence markers.
func Sanitize(content string) string {
	content = fenceLineRE.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimRight(content, "\n") + "\n"
}

// Dangerous reports whether content contains a denied substring.
func Dangerous(content string) bool {
	for _, bad := range dangerous {
		if strings.Contains(content, bad) {
			return true
		}
	}
	return false
}

// validate returns a human-readable reason to drop the content, or "".
func validate(content string) string {
	if len(strings.TrimSpace(content)) < MinContentLength {
		return fmt.Sprintf("content shorter than %d bytes, looks truncated", MinContentLength)
	}
	if placeholderRE.MatchString(content) {
		return "content contains an elision placeholder"
	}
	for _, bad := range dangerous {
		if strings.Contains(content, bad) {
			return fmt.Sprintf("content contains denied substring %q", bad)
		}
	}
	return ""
}

// Strip replaces every applied block in the reply with a short placeholder so
// raw source code is not echoed back into chat transcripts.
func Strip(raw string) string {
	out := fileBlockRE.ReplaceAllStringFunc(raw, func(block string) string {
		m := fileBlockRE.FindStringSubmatch(block)
		return fmt.Sprintf("[processed: %s]", strings.TrimSpace(m[1]))
	})
	out = deleteLineRE.ReplaceAllStringFunc(out, func(line string) string {
		m := deleteLineRE.FindStringSubmatch(line)
		return fmt.Sprintf("[processed delete: %s]", strings.TrimSpace(m[1]))
	})
	return strings.TrimSpace(out)
}
