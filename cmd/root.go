/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "roundkeeper",
	Short: "A combat round tracker for tabletop encounters",
	Long: `roundkeeper tracks initiative order, turn and round progression,
timed status effects, and scheduled triggers for a tabletop combat encounter.

Every command checkpoints the encounter, so a session survives restarts
and can be resumed or replayed at any point.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.roundkeeper.yaml)")
	rootCmd.PersistentFlags().StringP("data_dir", "d", "", "Location of the roundkeeper data directory")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data_dir"))
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

		// Search config in home directory with name ".roundkeeper" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".roundkeeper")
	}

	viper.SetEnvPrefix("roundkeeper")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveDataDir returns the configured data directory, defaulting to
// ./roundkeeper-data next to the working directory.
func resolveDataDir() string {
	dataDir := viper.GetString("data_dir")
	if dataDir == "" {
		dataDir = filepath.Join(".", "roundkeeper-data")
	}
	return dataDir
}
