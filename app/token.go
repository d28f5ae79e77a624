package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoSiteSettings/GoSiteSettings/internal/token"
)

func init() { //nolint: gochecknoinits
	tokenCmd.Flags().IntVar(&tokenLength, "length", token.DefaultLength, "Length of the generated token")

	rootCmd.AddCommand(tokenCmd)
}

var (
	tokenLength int

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Generate an API token and the hash to put into Webserver.APITokenHash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := token.Generate(tokenLength)
			if err != nil {
				return err
			}

			hash, err := token.Hash(tok)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\nhash:  %s\n", tok, hash)

			return nil
		},
	}
)
