package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/setting"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
)

func init() { //nolint: gochecknoinits
	settingListCmd.Flags().Uint64Var(&settingFilter.SiteID, "site", 0, "Only settings of this site id")
	settingListCmd.Flags().StringVar(&settingFilter.KeyName, "key", "", "Only settings of this key name")
	settingListCmd.Flags().StringVar(&settingKind, "kind", "", "Only settings of this kind")
	settingListCmd.Flags().StringVar(&settingFilter.Language, "language", "", "Language of translated values")
	settingListCmd.Flags().BoolVar(&settingFilter.TranslatedOnly, "translated", false,
		"Skip translated settings without a value in the language")

	settingCmd.AddCommand(settingListCmd)
	rootCmd.AddCommand(settingCmd)
}

var (
	settingFilter setting.Filter
	settingKind   string

	settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	settingListCmd = &cobra.Command{
		Use:   "list",
		Short: "List settings ordered by site, key and weight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}

			defer func() { _ = db.Close(gdb) }()

			langs, err := i18n.New(cfg.I18n.DefaultLanguage, cfg.I18n.Languages)
			if err != nil {
				return err
			}

			filter := settingFilter
			filter.Kind = setting.Kind(settingKind)

			repo := setting.NewRepository(gdb, site.NewDirectory(gdb), langs)

			var rows [][]string

			for s, err := range repo.ListSettings(cmd.Context(), filter) {
				if err != nil {
					return err
				}

				value := "-"
				if s.Value != nil {
					value = s.Value.String()
				}

				rows = append(rows, []string{
					strconv.FormatUint(s.ID, 10),
					s.SiteName,
					s.Key.Name,
					strconv.Itoa(s.Weight),
					s.KindName(),
					s.Language,
					value,
				})
			}

			printTable(cmd.OutOrStdout(), []string{"ID", "Site", "Key", "Weight", "Kind", "Language", "Value"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "%d settings\n", len(rows))

			return nil
		},
	}
)
