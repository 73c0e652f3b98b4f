package main

import (
	"fmt"
	"io"

	"github.com/iov-one/tokenvm"
	tokenvmd "github.com/iov-one/tokenvm/cmd/tokenvmd/app"
	"github.com/iov-one/tokenvm/crypto/bech32"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/escrow"
	"github.com/spf13/cobra"
)

func addressCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Compute and convert addresses",
	}
	cmd.AddCommand(
		escrowAddressCmd(out),
		ataAddressCmd(out),
		bech32Cmd(out),
		base58Cmd(out),
	)
	return cmd
}

func escrowAddressCmd(out io.Writer) *cobra.Command {
	var program, maker string
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Print the escrow record address of a maker and its bump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := parseAddress("program", program)
			if err != nil {
				return err
			}
			makerAddr, err := parseAddress("maker", maker)
			if err != nil {
				return err
			}
			record, bump, err := escrow.Find(programID, makerAddr)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %d\n", record, bump)
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", tokenvmd.EscrowID.String(), "escrow program id")
	cmd.Flags().StringVar(&maker, "maker", "", "maker address")
	return cmd
}

func ataAddressCmd(out io.Writer) *cobra.Command {
	var wallet, mint string
	cmd := &cobra.Command{
		Use:   "ata",
		Short: "Print the associated token account of a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			walletAddr, err := parseAddress("wallet", wallet)
			if err != nil {
				return err
			}
			mintAddr, err := parseAddress("mint", mint)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ata.Address(walletAddr, mintAddr))
			return nil
		},
	}
	cmd.Flags().StringVar(&wallet, "wallet", "", "wallet address")
	cmd.Flags().StringVar(&mint, "mint", "", "mint address")
	return cmd
}

func bech32Cmd(out io.Writer) *cobra.Command {
	var hrp string
	cmd := &cobra.Command{
		Use:   "bech32 <address>",
		Short: "Convert a base58 address to bech32",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress("address", args[0])
			if err != nil {
				return err
			}
			enc, err := bech32.EncodeAddress(hrp, addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, enc)
			return nil
		},
	}
	cmd.Flags().StringVar(&hrp, "hrp", bech32.DefaultHRP, "human readable part")
	return cmd
}

func base58Cmd(out io.Writer) *cobra.Command {
	var hrp string
	cmd := &cobra.Command{
		Use:   "base58 <bech32 address>",
		Short: "Convert a bech32 address to base58",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := bech32.DecodeAddress(hrp, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&hrp, "hrp", bech32.DefaultHRP, "human readable part")
	return cmd
}

func parseAddress(name, value string) (tokenvm.Address, error) {
	if value == "" {
		return tokenvm.Address{}, errors.Wrapf(errors.ErrInput, "--%s is required", name)
	}
	addr, err := tokenvm.ParseAddress(value)
	if err != nil {
		return addr, errors.Wrap(err, name)
	}
	return addr, nil
}
