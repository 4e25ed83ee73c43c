package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `authctl login` first")

func newWhoAmICmd(a *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the current token",
		Long: `Show the account behind the stored token, or behind --token when given.
Expired or invalid tokens are reported as such.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				var err error
				if token, err = a.storedToken(); err != nil {
					return err
				}
			}

			u, err := a.client.WhoAmI(cmd.Context(), token)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && errors.Is(err, client.ErrUnauthorized) {
					return fmt.Errorf("token rejected: %s", apiErr.Message)
				}
				return fmt.Errorf("whoami: %w", err)
			}

			cmd.Printf("id:       %s\nusername: %s\nemail:    %s\n", u.ID, u.Username, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (defaults to the stored one)")

	return cmd
}

func (a *App) storedToken() (string, error) {
	data, err := os.ReadFile(a.cfg.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errNotLoggedIn
	}
	return token, nil
}
