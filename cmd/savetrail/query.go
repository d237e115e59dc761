package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the snapshot store from the CLI",
	}
	cmd.AddCommand(queryTimelineCmd())
	cmd.AddCommand(queryLatestCmd())
	cmd.AddCommand(queryRowsCmd())
	cmd.AddCommand(queryUnmappedCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}
