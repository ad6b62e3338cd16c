package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	onboardingCmd := &cobra.Command{Use: "onboarding", Short: "Onboarding dialogue operations"}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start an onboarding session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFlag == "" {
				return fmt.Errorf("--token required")
			}
			data, err := doPostJSON(apiFlag+"/api/v1/onboarding/start", map[string]interface{}{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	onboardingCmd.AddCommand(startCmd)

	var sessionID string
	turnCmd := &cobra.Command{
		Use:   "turn TEXT",
		Short: "Send one text utterance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFlag == "" {
				return fmt.Errorf("--token required")
			}
			payload := map[string]interface{}{"text": args[0]}
			if sessionID != "" {
				payload["sessionId"] = sessionID
			}
			data, err := doPostJSON(apiFlag+"/api/v1/onboarding/turn", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	turnCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID (omit to start fresh)")
	onboardingCmd.AddCommand(turnCmd)

	stopCmd := &cobra.Command{
		Use:   "stop SESSION_ID",
		Short: "Stop a session and discard its state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFlag == "" {
				return fmt.Errorf("--token required")
			}
			if _, err := doDelete(apiFlag + "/api/v1/onboarding/sessions/" + args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "stopped")
			return nil
		},
	}
	onboardingCmd.AddCommand(stopCmd)

	rootCmd.AddCommand(onboardingCmd)
}
