package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/escrow"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func encodeCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print hex encoded escrow instruction data",
	}
	cmd.AddCommand(
		encodeOpenCmd(out),
		encodeTagCmd(out, "settle", escrow.TagSettle),
		encodeTagCmd(out, "cancel", escrow.TagCancel),
	)
	return cmd
}

func encodeOpenCmd(out io.Writer) *cobra.Command {
	var (
		bump          uint8
		receive, give string
		decimals      uint8
		v2            bool
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Encode the data of an open instruction",
		Long: `Encode the data of an open instruction. Amounts are decimal numbers
scaled by --decimals, so "1.5" with 6 decimals is 1500000 base units.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := escrow.OpenMsg{V2: v2, Bump: bump}
			var err error
			if msg.AmountToReceive, err = toBaseUnits(receive, decimals); err != nil {
				return errors.Wrap(err, "receive")
			}
			if msg.AmountToGive, err = toBaseUnits(give, decimals); err != nil {
				return errors.Wrap(err, "give")
			}
			if err := msg.Validate(); err != nil {
				return err
			}
			raw, err := msg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, hex.EncodeToString(raw))
			return nil
		},
	}
	cmd.Flags().Uint8Var(&bump, "bump", 0, "bump of the escrow record address")
	cmd.Flags().StringVar(&receive, "receive", "", "amount of mint B the maker receives")
	cmd.Flags().StringVar(&give, "give", "", "amount of mint A the maker deposits")
	cmd.Flags().Uint8Var(&decimals, "decimals", 0, "decimals of the amounts")
	cmd.Flags().BoolVar(&v2, "v2", false, "write the record with the copy codec")
	return cmd
}

func encodeTagCmd(out io.Writer, name string, tag byte) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Encode the data of a %s instruction", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(out, hex.EncodeToString([]byte{tag}))
			return nil
		},
	}
}

var maxUnits = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// toBaseUnits converts a decimal amount into the integer base units of a
// mint with given decimals.
func toBaseUnits(amount string, decimals uint8) (uint64, error) {
	if amount == "" {
		return 0, errors.Wrap(errors.ErrInput, "amount is required")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "amount %q: %s", amount, err)
	}
	units := d.Shift(int32(decimals))
	if !units.Equal(units.Truncate(0)) {
		return 0, errors.Wrapf(errors.ErrInput, "amount %s has more than %d decimals", amount, decimals)
	}
	if units.Sign() <= 0 {
		return 0, errors.Wrapf(errors.ErrInput, "amount %s must be positive", amount)
	}
	if units.GreaterThan(maxUnits) {
		return 0, errors.Wrapf(errors.ErrInput, "amount %s overflows", amount)
	}
	return units.BigInt().Uint64(), nil
}
