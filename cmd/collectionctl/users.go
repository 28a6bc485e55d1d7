package main

import (
	"github.com/spf13/cobra"

	"github.com/vitrine-app/vitrine/client"
)

func newUsersCmd(f *flags) *cobra.Command {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var userID, email, fullName string
	var admin bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			req := client.CreateUserRequest{UserID: userID, Email: email, IsAdmin: admin}
			if fullName != "" {
				req.DisplayName = &fullName
			}
			u, err := f.newClient(cmd.ErrOrStderr()).CreateUser(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	createCmd.Flags().StringVar(&userID, "id", "", "User ID (required)")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	createCmd.Flags().StringVarP(&fullName, "name", "n", "", "Display name")
	createCmd.Flags().BoolVar(&admin, "admin", false, "Grant admin visibility into owners")
	_ = createCmd.MarkFlagRequired("id")
	_ = createCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			u, err := f.newClient(cmd.ErrOrStderr()).GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	usersCmd.AddCommand(getCmd)
	return usersCmd
}
