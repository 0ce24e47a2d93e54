package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"regdesk/internal/platform/config"
	"regdesk/internal/platform/logger"
	"regdesk/internal/registration/models"
)

func newSchemaCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the spreadsheet column mapping",
	}
	var timeout time.Duration
	check := &cobra.Command{
		Use:   "check",
		Short: "Read the header row and verify the configured mapping against it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return runSchemaCheck(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	check.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "spreadsheet read timeout")
	cmd.AddCommand(check)
	return cmd
}

func runSchemaCheck(ctx context.Context, cfg *config.Config, out, errOut io.Writer) error {
	a, err := newApp(ctx, cfg, logger.NewWithWriter(errOut, cfg.LogLevel), appOptions{traceOutput: errOut})
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.WithoutCancel(ctx)) }()

	rows, err := a.table.ReadRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet %q has no header row", cfg.Sheet.Name)
	}
	header := rows[0]
	cols, err := a.schema.Resolve(header)
	if err != nil {
		return err
	}
	printColumns(out, a.schema, cols)
	if err := a.schema.CheckHeader(header); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "ok: %d data rows, audit cells start at column %s\n",
		len(rows)-1, models.ColumnLetter(cols.StatusWriteIndex()))
	return err
}

func printColumns(out io.Writer, schema models.Schema, cols *models.Columns) {
	fields := make([]models.Field, 0, len(schema.Headers))
	for f := range schema.Headers {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	for _, f := range fields {
		text := schema.Headers[f]
		if text == "" {
			continue
		}
		if i, ok := cols.Index(f); ok {
			fmt.Fprintf(out, "%-20s %-16s column %s\n", f, text, models.ColumnLetter(i))
			continue
		}
		fmt.Fprintf(out, "%-20s %-16s missing\n", f, text)
	}
}
