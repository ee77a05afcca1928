package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/commerce-auth/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <plain>",
		Short: "Print a bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := auth.EncodePassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return err
		},
	}
}

func newOpaqueTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opaque-token",
		Short: "Print a random one-off token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateOpaqueToken())
			return err
		},
	}
}
