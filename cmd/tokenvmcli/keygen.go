package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/iov-one/tokenvm/crypto"
	"github.com/iov-one/tokenvm/errors"
	"github.com/spf13/cobra"
)

func keygenCmd(out io.Writer) *cobra.Command {
	var seed, path, file string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create a new ed25519 key",
		Long: `Create a new ed25519 key. Without --seed the key is random, otherwise
it is derived from the hex encoded master seed along --path.

The key file is printed unless --out is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := newKey(seed, path)
			if err != nil {
				return err
			}
			if file == "" {
				raw, err := crypto.MarshalKey(key)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(raw))
				return nil
			}
			if err := crypto.SaveKey(file, key); err != nil {
				return err
			}
			fmt.Fprintln(out, key.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "hex encoded master seed")
	cmd.Flags().StringVar(&path, "path", crypto.DefaultDerivationPath, "derivation path used with --seed")
	cmd.Flags().StringVar(&file, "out", "", "write the key file to this path")
	return cmd
}

func newKey(seed, path string) (crypto.PrivateKey, error) {
	if seed == "" {
		return crypto.GenPrivKeyEd25519(), nil
	}
	raw, err := hex.DecodeString(seed)
	if err != nil {
		return crypto.PrivateKey{}, errors.Wrapf(errors.ErrInput, "seed: %s", err)
	}
	return crypto.DeriveKey(raw, path)
}
