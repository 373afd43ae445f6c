/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package triage turns a CI failure report into a candidate patch: classify
// the webhook body, locate the culprit file in the compiler log, fetch its
// current content, request a constrained fix, and notify the operator with
// a single summary.
//
// Every stage degrades instead of aborting: an unextractable culprit or an
// unreadable file narrows the context the model gets, and the notification
// says so.
package triage
