package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitrine-app/vitrine/internal/kinds"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/selector"
)

// activeView is what `active` prints.
type activeView struct {
	UserID     string                      `json:"userId"`
	Active     *model.AccessibleCollection `json:"active,omitempty"`
	Rule       selector.Rule               `json:"rule"`
	KindConfig kinds.Config                `json:"kindConfig"`
}

func viewOf(s *selector.Selector) activeView {
	v := activeView{UserID: s.Identity().UserID, Rule: s.Rule(), KindConfig: s.KindConfig()}
	if c, ok := s.Active(); ok {
		v.Active = &c
	}
	return v
}

func newCollectionsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collections the user can access",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			if err := f.requireUser(); err != nil {
				return err
			}
			list, err := f.newClient(cmd.ErrOrStderr()).ListAccessibleCollections(ctx, f.user, false)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
}

func newActiveCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Resolve and show the active collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			s, err := f.openSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()
			return printJSON(cmd.OutOrStdout(), viewOf(s.sel))
		},
	}
}

func newUseCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "use COLLECTION_ID",
		Short: "Make a collection active on every device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			s, err := f.openSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()
			if !accessible(s.sel, args[0]) {
				return fmt.Errorf("collection %s is not accessible to %s", args[0], f.user)
			}
			s.sel.SetActiveCollection(ctx, args[0])
			return printJSON(cmd.OutOrStdout(), viewOf(s.sel))
		},
	}
}

func newDefaultCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "default COLLECTION_ID",
		Short: "Set the user's default collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			s, err := f.openSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()
			if !accessible(s.sel, args[0]) {
				return fmt.Errorf("collection %s is not accessible to %s", args[0], f.user)
			}
			s.sel.SetDefaultCollection(ctx, args[0])
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "default set to %s\n", args[0])
			return err
		},
	}
}

func newRefetchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "refetch",
		Short: "Reload accessible collections and repair the active selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := f.context(cmd)
			defer cancel()
			s, err := f.openSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()
			if err := s.sel.RefetchAccessibleCollections(ctx); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), viewOf(s.sel))
		},
	}
}

func accessible(s *selector.Selector, collectionID string) bool {
	for _, c := range s.Accessible() {
		if c.CollectionID == collectionID {
			return true
		}
	}
	return false
}
