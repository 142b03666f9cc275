package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/chatwidget/tui"
	"github.com/tieubaoca/chatwidget/widget"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the terminal chat widget",
	Long: `Opens a terminal chat window connected to the agent server. Press Enter
or select Send to post the input; press Escape to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyWidgetFlags(cmd)

		// Logs would draw over the screen, so they go to a file.
		logFile, err := os.OpenFile(cfg.Widget.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		defer logFile.Close()
		log.SetHandler(text.New(logFile))

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		view := tui.NewView(tview.NewApplication())
		controller, err := widget.NewController(ctx, view.Handles(), newWidgetClient())
		if err != nil {
			return err
		}
		view.OnKey(func(key string) {
			controller.HandleKey(key)
		})

		log.WithField("server", cfg.Widget.ServerURL).Info("chat widget started")
		return view.Run()
	},
}

func newWidgetClient() *widget.HTTPClient {
	return widget.NewHTTPClient(cfg.Widget.ServerURL,
		widget.WithAgentName(cfg.Widget.AgentName),
		widget.WithTimeout(cfg.Widget.Timeout),
	)
}

func applyWidgetFlags(cmd *cobra.Command) {
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Widget.ServerURL = server
	}
	if agent, _ := cmd.Flags().GetString("agent"); agent != "" {
		cfg.Widget.AgentName = agent
	}
}

func addWidgetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("server", "s", "", "agent server base URL (overrides config)")
	cmd.Flags().StringP("agent", "a", "", "agent name to address (default agent when empty)")
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addWidgetFlags(chatCmd)
}
