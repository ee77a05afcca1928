package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

type verifyResult struct {
	Valid     bool       `json:"valid"`
	Expired   bool       `json:"expired"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newVerifyCmd(codec codecFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token's signature and expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec()
			if err != nil {
				return err
			}
			token := args[0]

			res := verifyResult{
				Valid:   c.IsValid(token),
				Expired: c.IsExpired(token),
			}
			if sub, ok := c.Subject(token); ok {
				res.Subject = sub
			}
			if exp, ok := c.Expiry(token); ok {
				res.ExpiresAt = &exp
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
