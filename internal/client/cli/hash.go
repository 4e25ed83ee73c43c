package cli

import (
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	p := auth.DefaultParams

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print an argon2id hash of a password",
		Long: `Read a password from the terminal and print its argon2id PHC string.
Runs offline; useful for seeding users directly in the database.`,
		Args: cobra.NoArgs,
		// No server or token file is involved.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readNewPassword(cmd)
			if err != nil {
				return err
			}

			if p.Iterations == 0 || p.Parallelism == 0 || p.MemoryKiB < 8*uint32(p.Parallelism) {
				return fmt.Errorf("invalid cost parameters: m=%d t=%d p=%d", p.MemoryKiB, p.Iterations, p.Parallelism)
			}

			encoded, err := auth.NewArgon2idHasher(p).Hash(password)
			if err != nil {
				return err
			}

			cmd.Println(encoded)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&p.MemoryKiB, "memory", p.MemoryKiB, "memory cost in KiB")
	cmd.Flags().Uint32Var(&p.Iterations, "iterations", p.Iterations, "number of passes")
	cmd.Flags().Uint8Var(&p.Parallelism, "parallelism", p.Parallelism, "degree of parallelism")

	return cmd
}
