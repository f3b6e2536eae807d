// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package cliui provides the interactive prompt and progress widgets used
// by cmd/beacon-cli. Adapted from the teacher's generic migration-tool
// interactive package, narrowed to the one prompt beacon-cli actually
// needs (confirm-before-destructive-action) and the two progress widgets
// a queue drain/peek benefits from.
package cliui

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// IO bundles the stdio handles prompts read from and write to, so tests
// can supply pipes instead of the real terminal.
type IO struct {
	Stdin  terminal.FileReader
	Stdout terminal.FileWriter
	Stderr terminal.FileWriter
}

// DefaultIO uses the process's real standard streams.
func DefaultIO() *IO {
	return &IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Prompter asks the operator yes/no questions and prints status lines.
type Prompter struct {
	io *IO
}

// NewPrompter builds a Prompter over io, defaulting to the real terminal
// when io is nil.
func NewPrompter(io *IO) *Prompter {
	if io == nil {
		io = DefaultIO()
	}
	return &Prompter{io: io}
}

// Confirm asks a yes/no question, defaulting to defaultValue when the
// operator just presses enter.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	var result bool
	prompt := &survey.Confirm{Message: message, Default: defaultValue}

	err := survey.AskOne(prompt, &result, survey.WithStdio(p.io.Stdin, p.io.Stdout, p.io.Stderr))
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, errors.New("operation cancelled by user")
		}
		return false, err
	}
	return result, nil
}

// Success prints a success line to stderr, matching the rest of this
// codebase's convention of keeping stdout reserved for machine-readable
// output.
func (p *Prompter) Success(message string) {
	fmt.Fprintf(p.io.Stderr, "✅ %s\n", message)
}

// Error prints an error line to stderr.
func (p *Prompter) Error(message string) {
	fmt.Fprintf(p.io.Stderr, "❌ %s\n", message)
}

// Info prints an informational line to stderr.
func (p *Prompter) Info(message string) {
	fmt.Fprintf(p.io.Stderr, "ℹ️  %s\n", message)
}
