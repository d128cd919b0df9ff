package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcdev12/retrospekt/go/internal/timer"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control the session timer (facilitator only)",
}

var timerSetCmd = &cobra.Command{
	Use:   "set <session-id> <duration>",
	Short: "Set the timer duration, in seconds or as a duration like 5m",
	Long: fmt.Sprintf(`Set the timer duration. The server accepts %d to %d seconds.
Common choices: %s.`, timer.MinDurationSeconds, timer.MaxDurationSeconds, presetList()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, args[0], []string{"timer", "set", args[1]})
	},
}

func presetList() string {
	labels := make([]string, 0, len(timer.Presets))
	for _, seconds := range timer.Presets {
		labels = append(labels, timer.FormatClock(seconds))
	}
	return strings.Join(labels, ", ")
}

func timerVerb(verb string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <session-id>",
		Short: fmt.Sprintf("%s the timer", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, args[0], []string{"timer", verb})
		},
	}
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Silence the timer sound",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return services.Identity.SetMuted(true)
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Play a sound when the timer runs out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return services.Identity.SetMuted(false)
	},
}

func init() {
	timerCmd.AddCommand(timerSetCmd)
	timerCmd.AddCommand(timerVerb("start"))
	timerCmd.AddCommand(timerVerb("pause"))
	timerCmd.AddCommand(timerVerb("reset"))
}
