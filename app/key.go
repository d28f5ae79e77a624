package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/key"
)

func init() { //nolint: gochecknoinits
	keyAddCmd.Flags().StringVar(&keyDescription, "description", "", "Description of the key")
	keyAddCmd.Flags().BoolVar(&keySingle, "single", false, "Allow only one setting per site for this key")

	keyCmd.AddCommand(keyAddCmd, keyListCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}

var (
	keyDescription string
	keySingle      bool

	keyCmd = &cobra.Command{
		Use:   "key",
		Short: "Manage setting keys",
	}

	keyAddCmd = &cobra.Command{
		Use:   "add NAME",
		Short: "Register a setting key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}

			defer func() { _ = db.Close(gdb) }()

			var description *string
			if keyDescription != "" {
				description = &keyDescription
			}

			k, err := key.Create(cmd.Context(), gdb, args[0], description, !keySingle)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "key %q created with id %d\n", k.Name, k.ID)

			return nil
		},
	}

	keyListCmd = &cobra.Command{
		Use:   "list",
		Short: "List setting keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}

			defer func() { _ = db.Close(gdb) }()

			keys, err := key.List(cmd.Context(), gdb)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(keys))
			for i := range keys {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(keys[i].ID), 10),
					keys[i].Name,
					strconv.FormatBool(keys[i].AllowMultiples),
					keys[i].DescriptionOrEmpty(),
				})
			}

			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Multiples", "Description"}, rows)

			return nil
		},
	}

	keyDeleteCmd = &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a key no setting uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil {
				return fmt.Errorf("invalid key id %q: %w", args[0], err)
			}

			gdb, err := openDB()
			if err != nil {
				return err
			}

			defer func() { _ = db.Close(gdb) }()

			if err = key.Delete(cmd.Context(), gdb, uint(id)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "key %d deleted\n", id)

			return nil
		},
	}
)
