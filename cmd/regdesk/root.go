package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "regdesk",
		Short:         "Course registration lookup and cancellation service",
		Long:          `regdesk looks up course registrations kept in a spreadsheet and lets registrants cancel or confirm them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"YAML config file for the schema mapping (environment variables still apply)")

	cmd.AddCommand(
		newServeCmd(opts),
		newLookupCmd(opts),
		newSchemaCmd(opts),
	)
	return cmd
}
