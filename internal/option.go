package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	command   Command
	stdout    io.Writer
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithCommand selects the command to run.
func WithCommand(c Command) Option {
	return func(a *application) {
		a.command = c
	}
}

// WithStdout redirects user-facing output (usage, serving URL, history).
func WithStdout(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithLogOutput redirects structured logs.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
