package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	flatskema "github.com/reoring/flatskema"
	"github.com/reoring/flatskema/i18n"
	"github.com/reoring/flatskema/schemafile"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := loadConfig()

	rootCmd := &cobra.Command{
		Use:   "flatskema",
		Short: "Schema-driven parser and validator for flat text files",
		Long:  "Parses and validates fixed-width and delimited text files against a declarative schema document, reporting positional validation errors.",
	}
	rootCmd.PersistentFlags().IntP("workers", "w", cfg.Workers, "worker count (1 = sequential)")
	rootCmd.PersistentFlags().String("lang", cfg.Lang, "message language (en/ja)")
	rootCmd.PersistentFlags().Bool("lz4", false, "input is LZ4-compressed")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(parseCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema> <data>",
		Short: "Validate every line of a data file, reporting all issues",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			pc, err := parserConfig(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			recs, err := flatskema.ParseAll(ctx, pc)
			if err != nil {
				iss, ok := flatskema.AsIssues(err)
				if !ok {
					return err
				}
				for _, it := range iss {
					ev := log.Error().Int("line", it.Line).Str("code", it.Code)
					if it.Cell != "" {
						ev = ev.Str("cell", it.Cell)
					}
					ev.Msg(it.Message)
				}
				return fmt.Errorf("%d issue(s) found", len(iss))
			}
			log.Info().Int("lines", len(recs)).Msg("all lines valid")
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <schema> <data>",
		Short: "Stream parsed records as JSON, logging invalid lines",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			pc, err := parserConfig(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			seq, err := flatskema.Stream(ctx, pc)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			invalid := 0
			for res := range seq {
				if !res.Valid() {
					invalid++
					for _, it := range res.Issues {
						log.Warn().Int("line", it.Line).Str("code", it.Code).Str("cell", it.Cell).Msg(it.Message)
					}
					continue
				}
				out := map[string]any{"line": res.Line, "type": res.Record.Type, "cells": res.Record.Map()}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid line(s)", invalid)
			}
			return nil
		},
	}
}

// parserConfig loads the schema document and opens the data source per the
// command flags.
func parserConfig(cmd *cobra.Command, schemaPath, dataPath string) (flatskema.ParserConfig, error) {
	var pc flatskema.ParserConfig

	lang, _ := cmd.Flags().GetString("lang")
	i18n.SetLanguage(lang)

	loader := schemafile.NewLoader(os.DirFS(filepath.Dir(schemaPath)))
	schema, err := loader.LoadFile(filepath.Base(schemaPath))
	if err != nil {
		return pc, err
	}

	var opts []flatskema.SourceOption
	if schema.Separator != "" {
		opts = append(opts, flatskema.WithSeparator(schema.Separator))
	}
	lz4in, _ := cmd.Flags().GetBool("lz4")
	var src flatskema.Source
	if lz4in {
		src, err = flatskema.LZ4File(dataPath, opts...)
	} else {
		src, err = flatskema.LineFile(dataPath, opts...)
	}
	if err != nil {
		return pc, err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	return flatskema.ParserConfig{Schema: schema, Source: src, Workers: workers}, nil
}

func setupContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
