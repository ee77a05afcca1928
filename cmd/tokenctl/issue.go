package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newIssueCmd(codec codecFactory) *cobra.Command {
	var (
		validity time.Duration
		claims   []string
	)

	cmd := &cobra.Command{
		Use:     "issue <subject>",
		Short:   "Sign a token for a subject",
		Example: `  tokenctl issue alice --validity 1h --claim tenant=acme`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseClaims(claims)
			if err != nil {
				return err
			}
			c, err := codec()
			if err != nil {
				return err
			}

			var token string
			if cmd.Flags().Changed("validity") {
				token, err = c.IssueWithValidity(args[0], extra, validity)
			} else {
				token, err = c.Issue(args[0], extra)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().DurationVar(&validity, "validity", 0, "token lifetime (defaults to SECURITY_JWT_EXPIRATION)")
	cmd.Flags().StringArrayVar(&claims, "claim", nil, "extra claim as key=value (repeatable)")
	return cmd
}

func parseClaims(raw []string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid claim %q, expected key=value", kv)
		}
		out[key] = value
	}
	return out, nil
}
