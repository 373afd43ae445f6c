/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"regexp"
	"strconv"
	"strings"
)

// Verdict is the outcome of classifying a webhook body.
type Verdict int

const (
	// Ignore means the body matched neither vocabulary.
	Ignore Verdict = iota
	// Failure means the body looks like a broken build.
	Failure
	// Success means the body looks like a passing build.
	Success
)

// The classification vocabulary is deliberately small: CI logs are noisy,
// and these are the words the toolchain reliably emits.
var (
	failureKeywords = []string{"error", "failed", "fatal", "exception", "undefined reference"}
	successKeywords = []string{"success", "passed", "build ok", "finished ok"}
)

// Classify inspects a raw webhook body. Failure wins over success when both
// vocabularies match, since "0 errors" style summaries are rarer than logs
// that end in a success banner after printing errors.
func Classify(body string) Verdict {
	lower := strings.ToLower(body)
	for _, kw := range failureKeywords {
		if strings.Contains(lower, kw) {
			return Failure
		}
	}
	for _, kw := range successKeywords {
		if strings.Contains(lower, kw) {
			return Success
		}
	}
	return Ignore
}

// culpritRE matches the "path.ext:line" shape compilers print. The first
// such occurrence wins; compilers report the proximate failure first.
var culpritRE = regexp.MustCompile(`([\w./-]+\.(?:c|h|cpp|hpp|cc|ino|s|py|go|rs|js|ts))[:(](\d+)`)

// Culprit is the file a compiler log implicates.
type Culprit struct {
	Path string
	Line int
}

// LocateCulprit extracts the first path:line reference from a raw compiler
// log. The boolean is false when the log names no recognizable file; this
// guess can be wrong and callers treat it as a heuristic.
func LocateCulprit(rawLog string) (Culprit, bool) {
	m := culpritRE.FindStringSubmatch(rawLog)
	if m == nil {
		return Culprit{}, false
	}
	line, _ := strconv.Atoi(m[2])
	return Culprit{Path: strings.TrimPrefix(m[1], "./"), Line: line}, true
}
