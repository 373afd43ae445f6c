/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console is a Bus over stdin/stdout, which keeps the agent usable without
// any chat service wired up.
type Console struct {
	operator string
	out      io.Writer
	messages chan Message
}

// NewConsole returns a Console bus reading lines from in and attributing
// them to operator.
func NewConsole(operator string, in io.Reader, out io.Writer) *Console {
	c := &Console{
		operator: operator,
		out:      out,
		messages: make(chan Message),
	}
	go c.readLoop(in)
	return c
}

func (c *Console) readLoop(in io.Reader) {
	defer close(c.messages)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		c.messages <- Message{From: c.operator, Text: text}
	}
}

// Receive implements Bus.
func (c *Console) Receive() <-chan Message {
	return c.messages
}

// Send implements Bus.
func (c *Console) Send(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.out, "%s\n", text)
	return err
}
