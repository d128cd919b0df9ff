// Package main is the retrospekt command line client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath      string
	logLevel        string
	participantName string
	version         = "dev" // set via ldflags at build time

	services *Services
)

var rootCmd = &cobra.Command{
	Use:   "retrospekt",
	Short: "Terminal client for collaborative retrospective boards",
	Long: `Retrospekt joins retrospective sessions from the terminal. Boards are
kept live from the server's push stream, and every change is sent as a
command and only shown once the server broadcasts the new state.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		services, err = setupServices(cfg)
		return err
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $RETRO_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&participantName, "name", "", "Participant name to join with when none is stored")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(phaseCmd)
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(columnCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(statsCmd)
}
