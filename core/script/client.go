package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-sync/core/ratelimit"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLimiter throttles every call through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// Client issues blocking commands to one external application.
type Client struct {
	app     string
	binary  string
	exec    Executor
	limiter *ratelimit.Limiter
}

// New constructs a client for the application app driven through binary.
func New(app, binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, fmt.Errorf("%s binary required", app)
	}
	client := &Client{
		app:     app,
		binary:  binary,
		exec:    CommandExecutor{},
		limiter: ratelimit.Unlimited(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// App returns the application name used in errors.
func (c *Client) App() string {
	return c.app
}

// Call waits for the limiter and runs one command. Failures of the command itself are
// returned as *CommandError; a cancelled wait returns the context error.
func (c *Client) Call(ctx context.Context, command string, args ...string) (string, error) {
	return c.CallTimeout(ctx, 0, command, args...)
}

// CallTimeout is Call with the command bounded by timeout. The bound starts once the
// limiter has granted the call, so a slow limiter never eats into it. A non-positive
// timeout means no bound beyond ctx.
func (c *Client) CallTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) (string, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return "", fmt.Errorf("throttle %s %s: %w", c.app, command, err)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		// Only the caller's own cancellation escapes as a bare context error; hitting the
		// command bound is a failed command.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return out, err
		}
		return out, &CommandError{App: c.app, Command: command, Output: out, Err: err}
	}
	return out, nil
}
