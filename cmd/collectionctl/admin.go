package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitrine-app/vitrine/internal/model"
)

func newCreateCmd(f *flags) *cobra.Command {
	var name, kind string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection owned by --user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			if err := f.requireUser(); err != nil {
				return err
			}
			c, err := f.newClient(cmd.ErrOrStderr()).CreateCollection(ctx, f.user, name, model.Kind(kind))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Collection name (required)")
	cmd.Flags().StringVar(&kind, "kind", string(model.DefaultKind), "watches, sneakers or purses")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newGrantCmd(f *flags) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "grant COLLECTION_ID USER_ID",
		Short: "Give a user a role on a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			if err := f.requireUser(); err != nil {
				return err
			}
			g, err := f.newClient(cmd.ErrOrStderr()).GrantAccess(ctx, f.user, args[0], args[1], model.Role(role))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), g)
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleViewer), "owner, editor or viewer")
	return cmd
}

func newRevokeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke COLLECTION_ID USER_ID",
		Short: "Remove a user's access to a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			if err := f.requireUser(); err != nil {
				return err
			}
			if err := f.newClient(cmd.ErrOrStderr()).RevokeAccess(ctx, f.user, args[0], args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "revoked %s on %s\n", args[1], args[0])
			return err
		},
	}
}
