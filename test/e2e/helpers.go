// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package e2e provides end-to-end testing utilities for the jsonbind CLI.
package e2e

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:staticcheck // Standard practice for Ginkgo
	. "github.com/onsi/gomega"    //nolint:staticcheck // Standard practice for Gomega
)

// TestConfig holds configuration for e2e tests
type TestConfig struct {
	Binary      string
	TestTimeout time.Duration
}

// NewTestConfig creates a new test configuration with defaults
func NewTestConfig() *TestConfig {
	// Look for the jsonbind binary in PATH or use a configurable path
	binary := os.Getenv("JSONBIND_BINARY")
	if binary == "" {
		binary = "jsonbind"
	}

	return &TestConfig{
		Binary:      binary,
		TestTimeout: 2 * time.Minute,
	}
}

// Command represents a jsonbind CLI command execution
type Command struct {
	config *TestConfig
	args   []string
	env    []string
	stdin  string
}

// NewCommand creates a new jsonbind command
func NewCommand(config *TestConfig, args ...string) *Command {
	return &Command{
		config: config,
		args:   args,
		env:    os.Environ(),
	}
}

// WithEnv adds environment variables to the command
func (c *Command) WithEnv(env ...string) *Command {
	c.env = append(c.env, env...)
	return c
}

// WithStdin sets the stdin input for the command
func (c *Command) WithStdin(stdin string) *Command {
	c.stdin = stdin
	return c
}

// Run executes the command and returns stdout, stderr, and error
func (c *Command) Run() (string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.TestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.config.Binary, c.args...) //nolint:gosec // Intentional for e2e testing
	cmd.Env = c.env
	if c.stdin != "" {
		cmd.Stdin = strings.NewReader(c.stdin)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

// ExpectSuccess runs the command and expects it to succeed
func (c *Command) ExpectSuccess() (string, string) {
	stdout, stderr, err := c.Run()
	if err != nil {
		GinkgoWriter.Printf("Command failed: %s %v\nError: %v\nStdout: %s\nStderr: %s\n",
			c.config.Binary, c.args, err, stdout, stderr)
	}
	ExpectWithOffset(1, err).ToNot(HaveOccurred(),
		fmt.Sprintf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr))
	return stdout, stderr
}

// ExpectFailure runs the command and expects it to fail
func (c *Command) ExpectFailure() (string, string, error) {
	stdout, stderr, err := c.Run()
	ExpectWithOffset(1, err).To(HaveOccurred(),
		fmt.Sprintf("Command should have failed but succeeded\nStdout: %s\nStderr: %s", stdout, stderr))
	return stdout, stderr, err
}

// CheckBinaryAvailable checks if the jsonbind binary can be executed
func CheckBinaryAvailable(config *TestConfig) error {
	_, _, err := NewCommand(config, "version").Run()
	if err != nil {
		return fmt.Errorf("jsonbind binary not available at %s: %w", config.Binary, err)
	}
	return nil
}

// WriteConfig writes a jsonbind configuration file into dir and returns its
// path.
func WriteConfig(dir, content string) string {
	path := filepath.Join(dir, "config.yaml")
	ExpectWithOffset(1, os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	return path
}
