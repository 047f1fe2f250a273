/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alex-boop-chasey/vite-docs/pkg/ascii"
	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/config"
	"github.com/alex-boop-chasey/vite-docs/pkg/ignore"
)

var classifyBindings = map[string]string{
	"root":              "root",
	"include_blog":      "include-blog",
	"include_hidden":    "include-hidden",
	"respect_gitignore": "respect-gitignore",
}

type classifyResult struct {
	Path        string `json:"path"`
	Verdict     string `json:"verdict"`
	ContentType string `json:"content_type,omitempty"`
	Status      string `json:"status,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func newClassifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [path...]",
		Short: "Show how paths would be classified",
		Long: `Print the include/exclude verdict, content type and skip reason for each
path. Paths are taken relative to the source root; a path that exists on disk
inside the root is converted automatically. With --rules the extension rule
table is printed instead.`,
		RunE: runClassify,
	}
	f := cmd.Flags()
	f.String("root", "docs", "Documentation source root")
	f.Bool("include-blog", false, "Include blog, news and release-note content")
	f.Bool("include-hidden", false, "Include dot files and dot directories")
	f.Bool("respect-gitignore", false, "Apply .gitignore and .vitedocsignore")
	f.Bool("rules", false, "Print the extension rule table")
	f.String("format", "text", "Output format (text|json)")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, classifyBindings)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("%w: unsupported format %q", config.ErrInvalid, format)
	}

	var matcher *ignore.Matcher
	if cfg.RespectGitignore {
		if matcher, err = ignore.NewMatcher(cfg.Root); err != nil {
			return err
		}
	}
	c, err := classify.FromConfig(cfg, matcher, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	out := cmd.OutOrStdout()
	if rules, _ := cmd.Flags().GetBool("rules"); rules {
		return printRules(cmd, c.Rules(), format)
	}
	if len(args) == 0 {
		return fmt.Errorf("at least one path is required (or use --rules)")
	}

	results := make([]classifyResult, 0, len(args))
	for _, arg := range args {
		rel, isDir := rootRelative(cfg.Root, arg)
		var d classify.Decision
		if isDir {
			d = c.ClassifyDir(rel)
		} else {
			d = c.ClassifyFile(rel)
		}
		results = append(results, classifyResult{
			Path:        rel,
			Verdict:     d.Verdict.String(),
			ContentType: string(d.ContentType),
			Status:      string(d.Status),
			Reason:      d.Reason,
		})
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		line := fmt.Sprintf("%-8s %s", r.Verdict, r.Path)
		if r.ContentType != "" {
			line += " [" + r.ContentType + "]"
		}
		if r.Reason != "" {
			line += " (" + r.Reason + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

const rulesPerLine = 8

func printRules(cmd *cobra.Command, rules []classify.Rule, format string) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		type rule struct {
			Extensions  []string `json:"extensions"`
			ContentType string   `json:"content_type,omitempty"`
			Verdict     string   `json:"verdict"`
		}
		list := make([]rule, 0, len(rules))
		for _, r := range rules {
			list = append(list, rule{Extensions: r.Extensions, ContentType: string(r.ContentType), Verdict: r.Verdict.String()})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	pairs := make([][2]string, 0, len(rules))
	for _, r := range rules {
		label := r.Verdict.String()
		if r.ContentType != "" {
			label += " " + string(r.ContentType)
		}
		for i := 0; i < len(r.Extensions); i += rulesPerLine {
			end := min(i+rulesPerLine, len(r.Extensions))
			pairs = append(pairs, [2]string{label, strings.Join(r.Extensions[i:end], " ")})
			label = ""
		}
	}
	return ascii.DrawBox(out, ascii.KeyValueLines(pairs))
}

// rootRelative converts an argument to a slash path under root. Arguments that
// exist on disk inside root are made relative to it; anything else is taken
// as already root-relative.
func rootRelative(root, arg string) (string, bool) {
	if st, err := os.Stat(arg); err == nil {
		absRoot, err1 := filepath.Abs(root)
		absArg, err2 := filepath.Abs(arg)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absRoot, absArg); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return filepath.ToSlash(rel), st.IsDir()
			}
		}
	}
	rel := filepath.ToSlash(filepath.Clean(arg))
	isDir := strings.HasSuffix(arg, "/")
	if st, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
		isDir = st.IsDir()
	}
	return rel, isDir
}
