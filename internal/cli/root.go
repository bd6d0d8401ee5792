package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/redline/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Redline - contract clause analysis & risk scoring (non-normative)",
	Long: `Redline is an open-source tool for surfacing risky, one-sided, and
ambiguous language in contracts.

It does not give legal advice and does not decide whether a contract is
enforceable or fair.

Redline segments a contract into clauses, classifies each clause,
scores it against a transparent catalog of known unfavorable patterns,
and compares it with balanced reference clauses. Every score traces
back to the exact words that triggered it.

Redline prioritizes review; a lawyer concludes it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Redline.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("redline v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.redline/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.redline")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Register every config key with its default so REDLINE_* env
	// overrides resolve for keys absent from the config file.
	if data, err := yaml.Marshal(model.DefaultConfig()); err == nil {
		var defaults map[string]interface{}
		if yaml.Unmarshal(data, &defaults) == nil {
			for key, value := range defaults {
				viper.SetDefault(key, value)
			}
		}
	}

	// Read in environment variables that match REDLINE_*
	viper.SetEnvPrefix("REDLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
