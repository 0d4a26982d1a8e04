package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"takotools.com/tako-web/internal/catalog"
)

var errCheckFailed = errors.New("check failed")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the content and tools documents and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			a, err := newApp(cfg, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			return a.check(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// check reports load failures and catalog problems to out. It fails when
// the tools document cannot load or two records share a slug; a broken
// content document only degrades the home page and is reported as a warning.
func (a *app) check(ctx context.Context, out io.Writer) error {
	content, tools := a.load(ctx)
	fmt.Fprintf(out, "source: %s\n", a.store.Source())

	failed := false
	switch {
	case content.IsReady():
		fmt.Fprintln(out, "content: ok")
	default:
		fmt.Fprintf(out, "content: WARN %s\n", stateCause(content.Cause(), content.IsLoading()))
	}

	items, ok := tools.Data()
	if !ok {
		fmt.Fprintf(out, "tools: FAIL %s\n", stateCause(tools.Cause(), tools.IsLoading()))
		return errCheckFailed
	}
	report := catalog.Audit(items)
	fmt.Fprintf(out, "tools: %d records\n", report.Total)
	for _, slug := range report.DuplicateSlugs() {
		fmt.Fprintf(out, "  FAIL duplicate slug %q (%d records)\n", slug, report.Duplicates[slug])
		failed = true
	}
	for _, i := range report.Unslugged {
		fmt.Fprintf(out, "  WARN record #%d has no slug and no detail page\n", i)
	}
	if len(report.Unpriced) > 0 {
		fmt.Fprintf(out, "  WARN price not numeric, sorts last: %s\n", strings.Join(report.Unpriced, ", "))
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

func stateCause(cause string, loading bool) string {
	if loading {
		return "timed out"
	}
	return cause
}
