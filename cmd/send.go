package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/chatwidget/widget"
)

var sendCmd = &cobra.Command{
	Use:   "send [prompt]",
	Short: "Send one prompt and print the transcript",
	Long: `Sends a single prompt to the agent server and prints both bubbles.
A failed turn prints only the prompt and exits with an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyWidgetFlags(cmd)

		view := widget.NewWriterView(cmd.OutOrStdout())
		controller, err := widget.NewController(cmd.Context(), view.Handles(), newWidgetClient())
		if err != nil {
			return err
		}

		view.SetValue(strings.Join(args, " "))
		_, err = controller.SendMessage(cmd.Context()).Wait()
		return err
	},
}

var createAgentCmd = &cobra.Command{
	Use:   "create-agent [name]",
	Short: "Create a named agent on the server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyWidgetFlags(cmd)

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		msg, err := newWidgetClient().CreateAgent(cmd.Context(), name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd, createAgentCmd)
	addWidgetFlags(sendCmd)
	addWidgetFlags(createAgentCmd)
}
