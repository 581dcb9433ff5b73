package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unitecms/contentgraph/pkg/schema"
)

var schemaDomain string

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:     "schema <domain.json>...",
	Short:   "schema prints the GraphQL schema of a domain to std out",
	Example: "contentgraph schema marketing.json > marketing.graphql",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		_, org, err := provision(s, args)
		if err != nil {
			return err
		}
		domain, err := pickDomain(org, schemaDomain)
		if err != nil {
			return err
		}
		return schema.WriteSDL(cmd.OutOrStdout(), org, domain, viper.GetInt("max_nesting_level"))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVar(&schemaDomain, "domain", "", "domain to print, defaults to the first document")
}
