package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/psg/internal"
	"github.com/starford/psg/internal/apperr"
	"github.com/starford/psg/internal/site"
	pkgconfig "github.com/starford/psg/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command, command internal.Command) error {
	opts := []internal.Option{
		internal.WithCommand(command),
	}

	if command != internal.CommandHelp {
		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		opts = append(opts, internal.WithConfig(cfg))
	}

	return internal.Run(ctx, opts...)
}

func newCommand() *cli.Command {
	root := &cli.Command{
		Name:            "psg",
		Usage:           "Minimal static-site builder: Markdown in src, HTML in docs",
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, internal.CommandHelp)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to optional config file",
				DefaultText: "psg.yaml",
				Value:       "psg.yaml",
				Sources:     cli.EnvVars("PSG_CONFIG_FILE"),
			},
		},
	}

	for _, c := range internal.Commands() {
		root.Commands = append(root.Commands, &cli.Command{
			Name:  c.String(),
			Usage: c.Usage(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return run(ctx, cmd, c)
			},
		})
	}
	return root
}

// report prints err for the operator. Conversion diagnostics are echoed
// indented below a banner.
func report(w io.Writer, err error) {
	var convErr *site.ConversionError
	switch {
	case errors.Is(err, apperr.ErrUsage):
		// Usage text has already been printed.
	case errors.As(err, &convErr):
		fmt.Fprintf(w, "psg: conversion error in %s. Printing converter diagnostics below:\n\n", convErr.Source)
		fmt.Fprintln(w, convErr.Indented())
		fmt.Fprintln(w, "psg: exiting now, built site may be incomplete")
	default:
		fmt.Fprintf(w, "psg: %v. Exiting now.\n", err)
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}
