/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/chatwidget/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatwidget",
	Short: "Chat with an agent server from the terminal, or run the server",
	Long: `chatwidget sends prompts to an agent completions endpoint and renders
the conversation as a transcript.

  chatwidget start          run the agent server and its browser page
  chatwidget chat           open the terminal chat widget
  chatwidget send "2+2?"    send one prompt and print the reply`,
	SilenceUsage: true,
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
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: initConfig refers back to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	loaded, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if lvl, _ := rootCmd.PersistentFlags().GetString("log-level"); lvl != "" {
		loaded.LogLevel = lvl
	}
	cfg = loaded

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetHandler(cli.New(os.Stderr))
	log.SetLevel(level)

	if cfgFile != "" {
		log.Infof("Using config file: %s", cfgFile)
	}
	return nil
}
