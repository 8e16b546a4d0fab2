/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	analyzeCmd "github.com/bluess57/gt7core/pkg/cmd/analyze"
	migrateCmd "github.com/bluess57/gt7core/pkg/cmd/migrate"
	recordCmd "github.com/bluess57/gt7core/pkg/cmd/record"
	"github.com/bluess57/gt7core/pkg/config"
	"github.com/bluess57/gt7core/version"
)

const envPrefix = "GT7"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "gt7",
	Short:   "Telemetry recorder and lap analyzer for the GT7 simulator",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.gt7core.yml)")

	rootCmd.PersistentFlags().StringVar(&config.PlayStationAddr, "ps-addr",
		"255.255.255.255",
		"Address of the console sending telemetry")
	rootCmd.PersistentFlags().IntVar(&config.ReceivePort, "receive-port",
		33740,
		"Local UDP port for incoming telemetry")
	rootCmd.PersistentFlags().IntVar(&config.HeartbeatPort, "heartbeat-port",
		33739,
		"Console port receiving heartbeats")
	rootCmd.PersistentFlags().StringVar(&config.ArchivePath, "archive",
		"gt7laps.db",
		"Path of the sqlite lap archive")
	rootCmd.PersistentFlags().StringVar(&config.CarDBPath, "car-db",
		"",
		"Path of the car name database (csv)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"logLevel",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"logFormat",
		"text",
		"controls the log output format")
	rootCmd.PersistentFlags().StringVar(&config.LogConfig,
		"log-config",
		"",
		"filter rules for named loggers")

	// add commands here
	rootCmd.AddCommand(recordCmd.NewRecordCmd())
	rootCmd.AddCommand(analyzeCmd.NewAnalyzeCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".gt7core" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gt7core")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --favorite-color to GT7_FAVORITE_COLOR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
