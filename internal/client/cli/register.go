package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/cobra"
)

func newRegisterCmd(a *App) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long: `Create a new account on the server. Missing username or email are
prompted for; the password is always read from the terminal and must be
entered twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			w := cmd.ErrOrStderr()

			var err error
			if username == "" {
				if username, err = getSimpleText(reader, "Enter user name", w); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = getSimpleText(reader, "Enter email", w); err != nil {
					return err
				}
			}

			password, err := readNewPassword(cmd)
			if err != nil {
				return err
			}

			id, err := a.client.Register(cmd.Context(), username, email, password)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}

			cmd.Printf("User %s registered (id %s)\n", username, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "user name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")

	return cmd
}

var errPasswordMismatch = errors.New("passwords do not match")

// readNewPassword asks for a password twice.
func readNewPassword(cmd *cobra.Command) (string, error) {
	w := cmd.ErrOrStderr()

	first, err := getPassword(w, "Enter password")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := getPassword(w, "Repeat password")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}
