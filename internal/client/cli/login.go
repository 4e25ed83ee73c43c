package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *App) *cobra.Command {
	var (
		username   string
		printToken bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Long: `Exchange a user name and password for a bearer token. The token is
written to the token file with owner-only permissions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.ErrOrStderr()

			if username == "" {
				var err error
				username, err = getSimpleText(bufio.NewReader(cmd.InOrStdin()), "Enter user name", w)
				if err != nil {
					return err
				}
			}

			pw, err := getPassword(w, "Enter password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			token, err := a.client.Login(cmd.Context(), username, string(pw))
			if err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					return errors.New("invalid username or password")
				}
				return fmt.Errorf("login: %w", err)
			}

			if err := filex.WriteSecret(a.cfg.TokenFile, []byte(token+"\n")); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			if printToken {
				cmd.Println(token)
				return nil
			}
			cmd.Printf("Logged in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "user name")
	cmd.Flags().BoolVar(&printToken, "print", false, "print the token to stdout")

	return cmd
}
