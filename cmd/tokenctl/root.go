package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/commerce-auth/internal/auth"
	"github.com/spec-kit/commerce-auth/internal/config"
)

// codecFactory builds the codec from process configuration; tests replace it.
type codecFactory func() (*auth.TokenCodec, error)

func loadCodec() (*auth.TokenCodec, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return auth.NewTokenCodec(cfg.Security), nil
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(loadCodec)
}

func newRootCmdWith(codec codecFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "tokenctl",
		Short:         "Issue and inspect bearer tokens using the service configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newIssueCmd(codec),
		newVerifyCmd(codec),
		newHashPasswordCmd(),
		newOpaqueTokenCmd(),
	)
	return root
}
