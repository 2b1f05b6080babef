package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/kipimo/apps/api/echo"
	"github.com/trezcool/kipimo/core/auth"
)

var errNoAdmin = errors.New("no admin configured, set AUTH_ADMINEMAIL")

func (cli *commandLine) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print an API token for the configured admin",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			admin := auth.AdminFrom(cli.conf)
			if admin.Email == "" {
				return errNoAdmin
			}
			token, err := echoapi.GenerateToken(cli.conf, echoapi.GetAdminClaims(cli.conf, admin))
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, token)
			return nil
		},
	}
}
