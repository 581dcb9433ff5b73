package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unitecms/contentgraph/pkg/graphql"
	"github.com/unitecms/contentgraph/pkg/selection"
)

const (
	envPrefix      = "CONTENTGRAPH"
	configFileName = ".contentgraph"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contentgraph",
	Short: "contentgraph serves GraphQL queries over the content of organization domains",
	Long: `contentgraph answers GraphQL queries against the content types of a domain.

Reference fields can be followed up to max_nesting_level times. A reference beyond
that level is answered with {"message": "Maximum nesting level of N reached."}.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.contentgraph.yaml)")
	flags.String("organization", "default", "identifier of the organization the domains belong to")
	flags.String("organization_title", "Default", "title of the organization")
	flags.StringSlice("domains", nil, "domain definition documents (JSON)")
	flags.StringSlice("fixtures", nil, "content fixtures (JSON arrays of items) loaded at startup")
	flags.String("data_dir", "", "badger directory, the content is kept in memory when empty")
	flags.Int("max_nesting_level", graphql.DefaultMaxNestingLevel, "number of reference fields a query may follow")
	flags.Int("query_cache_size", selection.DefaultCacheSize, "number of parsed queries to cache")
	flags.String("log_level", "info", "debug, info, warn or error")

	for _, name := range []string{
		"organization", "organization_title", "domains", "fixtures", "data_dir",
		"max_nesting_level", "query_cache_size", "log_level",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configFileName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "unable to read config:", err)
			os.Exit(1)
		}
	}
}
