package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
)

func init() { //nolint: gochecknoinits
	siteCmd.AddCommand(siteAddCmd, siteListCmd)
	rootCmd.AddCommand(siteCmd)
}

var (
	siteCmd = &cobra.Command{
		Use:   "site",
		Short: "Manage sites",
	}

	siteAddCmd = &cobra.Command{
		Use:   "add NAME DOMAIN",
		Short: "Add a site",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}

			defer func() { _ = db.Close(gdb) }()

			s, err := site.Create(cmd.Context(), gdb, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "site %q created with id %d\n", s.Domain, s.ID)

			return nil
		},
	}

	siteListCmd = &cobra.Command{
		Use:   "list",
		Short: "List sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}

			defer func() { _ = db.Close(gdb) }()

			sites, err := site.List(cmd.Context(), gdb)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(sites))
			for _, s := range sites {
				rows = append(rows, []string{strconv.FormatUint(s.ID, 10), s.Name, s.Domain})
			}

			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Domain"}, rows)

			return nil
		},
	}
)
