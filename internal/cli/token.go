package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/internal/service"
)

// HashResult is the JSON payload of token --hash.
type HashResult struct {
	Hash string `json:"hash"`
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		subject  string
		password string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for the HTTP API",
		Long: "Mint an admin bearer token for the HTTP API.\n\n" +
			"With --hash, print the bcrypt hash of a password instead; set it as\n" +
			"ADMIN_PASSWORD_HASH to enable POST /auth/token on the server.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("hash") {
				out := newFormatter(rootOpts, cmd)
				hash, err := service.HashPassword(password)
				if err != nil {
					return out.Fail(err)
				}
				return out.Result(hash, HashResult{Hash: hash})
			}

			s, err := openSession(cmd, rootOpts, app.Options{}, false)
			if err != nil {
				return err
			}
			defer s.Close()

			issued, err := s.app.Tokens.Issue(subject)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(issued.AccessToken, issued)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().StringVar(&password, "hash", "", "print the bcrypt hash of this password and exit")
	return cmd
}
