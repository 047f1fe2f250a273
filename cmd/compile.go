/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alex-boop-chasey/vite-docs/pkg/pipeline"
)

// compileBindings maps config keys to compile flags
var compileBindings = map[string]string{
	"root":                  "root",
	"title":                 "title",
	"group_by":              "group-by",
	"include_blog":          "include-blog",
	"include_hidden":        "include-hidden",
	"respect_gitignore":     "respect-gitignore",
	"snippets.enabled":      "snippets",
	"output.flat":           "flat",
	"output.grouped":        "grouped",
	"output.log":            "log",
	"output.archive":        "archive",
	"output.archive_format": "archive-format",
}

func newCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the documentation tree into text artifacts",
		Long: `Walk the source root, extract plain text from every included file and
write the flat and grouped compilations. The run log and archive are written
when configured. Flags override vitedocs.yaml and VITEDOCS_* variables.`,
		Args: cobra.NoArgs,
		RunE: runCompile,
	}

	f := cmd.Flags()
	f.String("root", "docs", "Documentation source root")
	f.String("title", "Documentation", "Title of the compiled document")
	f.String("group-by", "parent", "Grouping key for the grouped output (parent|top)")
	f.Bool("include-blog", false, "Include blog, news and release-note content")
	f.Bool("include-hidden", false, "Include dot files and dot directories")
	f.Bool("respect-gitignore", false, "Skip paths matched by .gitignore and .vitedocsignore")
	f.Bool("snippets", true, "Inline referenced code snippets into Markdown sections")
	f.String("flat", "dist/docs.txt", "Flat output path (empty disables)")
	f.String("grouped", "dist/docs-grouped.txt", "Grouped output path (empty disables)")
	f.String("log", "", "Run log path")
	f.String("archive", "", "Archive path for the compiled output")
	f.String("archive-format", "gzip", "Archive compression (gzip|zstd)")
	f.Bool("dry-run", false, "Compile and report without writing artifacts")
	f.Bool("progress", false, "Show a progress spinner on stderr")
	f.Bool("summary", true, "Print the run summary box")

	return cmd
}

func runCompile(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, compileBindings)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	progress, _ := cmd.Flags().GetBool("progress")
	summary, _ := cmd.Flags().GetBool("summary")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, cfg, pipeline.Options{
		DryRun:   dryRun,
		Progress: progress,
		Stderr:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary {
		fmt.Fprint(out, res.Summary.Box())
	}
	for _, a := range res.Artifacts {
		verb := "wrote"
		if dryRun {
			verb = "would write"
		}
		fmt.Fprintf(out, "%s %s (%s, %d bytes)\n", verb, a.Path, a.Kind, a.Bytes)
	}
	return nil
}
