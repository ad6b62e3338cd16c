package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User record operations"}

	var email, firstName, lastName, username, phone string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"email":     email,
				"firstName": firstName,
				"lastName":  lastName,
			}
			if username != "" {
				payload["username"] = username
			}
			if phone != "" {
				payload["phone"] = phone
			}
			data, err := doPostJSON(apiFlag+"/api/v1/auth/register", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	registerCmd.Flags().StringVarP(&firstName, "first-name", "f", "", "First name (required)")
	registerCmd.Flags().StringVarP(&lastName, "last-name", "l", "", "Last name")
	registerCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&phone, "phone", "p", "", "Phone number")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("first-name")
	usersCmd.AddCommand(registerCmd)

	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/v1/users?userId=" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(getCmd)

	rootCmd.AddCommand(usersCmd)
}
