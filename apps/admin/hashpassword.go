package main

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trezcool/kipimo/core/auth"
)

var errPasswordMismatch = errors.New("passwords do not match")

func (cli *commandLine) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashpassword",
		Short: "Hash the admin password",
		Long:  "Prompt for the admin password and print the bcrypt hash to set as AUTH_ADMINPASSWORDHASH.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := cli.promptPassword("Enter password:")
			if err != nil {
				return err
			}
			if pwd == "" {
				return usageError(cmd)
			}
			confirm, err := cli.promptPassword("Confirm password:")
			if err != nil {
				return err
			}
			if confirm != pwd {
				return errPasswordMismatch
			}

			hash, err := auth.HashPassword(pwd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "AUTH_ADMINPASSWORDHASH=%s\n", hash)
			return nil
		},
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
