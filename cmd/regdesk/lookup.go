package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"regdesk/internal/platform/config"
	"regdesk/internal/platform/logger"
	"regdesk/internal/registration/models"
	"regdesk/pkg/domain"
)

type lookupOptions struct {
	id       string
	birthday string
	timeout  time.Duration
}

func newLookupCmd(root *rootOptions) *cobra.Command {
	opts := &lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup --id A123456789",
		Short: "List the registrations for a national id (names masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runLookup(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "national id number")
	cmd.Flags().StringVar(&opts.birthday, "birthday", "", "7-digit birthday (required when REQUIRE_BIRTHDAY is set)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "spreadsheet read timeout")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runLookup(parent context.Context, cfg *config.Config, opts *lookupOptions, out, errOut io.Writer) error {
	identity, err := lookupIdentity(cfg, opts)
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()

	if errOut == nil {
		errOut = os.Stderr
	}
	a, err := newApp(ctx, cfg, logger.NewWithWriter(errOut, cfg.LogLevel), appOptions{traceOutput: errOut})
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.WithoutCancel(ctx)) }()

	regs, err := a.service.Lookup(ctx, identity)
	if err != nil {
		return err
	}
	return printRegistrations(out, regs)
}

func lookupIdentity(cfg *config.Config, opts *lookupOptions) (models.Identity, error) {
	id, err := domain.ParseNationalID(opts.id)
	if err != nil {
		return models.Identity{}, err
	}
	identity := models.Identity{IDNumber: id}
	if cfg.RequireBirthday {
		birthday, err := domain.ParseBirthday(opts.birthday)
		if err != nil {
			return models.Identity{}, err
		}
		identity.Birthday = birthday
	}
	return identity, nil
}

func printRegistrations(out io.Writer, regs []models.Registration) error {
	if len(regs) == 0 {
		_, err := fmt.Fprintln(out, "no registrations found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNAME\tCOURSE\tDATE\tSTATUS\tCHANGED AT")
	for _, r := range regs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.RowPosition,
			domain.MaskName(r.Name),
			r.CourseName,
			r.CourseDate,
			r.Status,
			orDash(r.StatusChangedAt),
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
