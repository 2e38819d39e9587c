// Package main provides the synthra CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/synthra/cli"
	"github.com/richinex/synthra/model"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	headless bool
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "synthra",
		Short: "AI research companion for your browser",
		Long: `Synthra follows your active browser tab, generates AI summaries,
key-term highlights, and multi-tab research, and keeps every page's
results cached so switching tabs restores them instantly.

Run 'synthra serve' to host the analysis API, then use the page
commands against a live browser session.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic)")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "Run the browser headless")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(highlightCmd())
	rootCmd.AddCommand(researchCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(clearCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		Headless: headless,
		Verbose:  verbose,
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis API server",
		Long: `Run the HTTP server exposing summarize, highlight, multi-tab
research, and Notion note-saving endpoints backed by the configured
LLM provider.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Serve(context.Background(), options())
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the active tab and print state changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Watch(context.Background(), options())
		},
	}
}

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Summarize the active page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Summarize(context.Background(), options())
		},
	}
}

func highlightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "highlight",
		Short: "Extract and explain key terms on the active page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Highlight(context.Background(), options())
		},
	}
}

func researchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "research [query]",
		Short: "Run a comparative query across all open tabs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Research(context.Background(), args[0], options())
		},
	}
}

func saveCmd() *cobra.Command {
	var noteType string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the active page's analysis to Notion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Save(context.Background(), noteType, options())
		},
	}

	cmd.Flags().StringVarP(&noteType, "type", "t", model.NoteTypeSummary,
		"Artifact to save (summary, highlights, research)")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently analyzed pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.History(context.Background(), limit, options())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (0 = configured default)")
	return cmd
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [url]",
		Short: "Clear cached analysis for one page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Clear(context.Background(), args[0], options())
		},
	}
}
