package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cellkit.dev/harness/chain"
	"cellkit.dev/harness/codec"
	"cellkit.dev/harness/testtool"
	"cellkit.dev/harness/vm"
)

func newVerifyCmd() *cobra.Command {
	var (
		txPath    string
		maxCycles uint64
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-run the scripts of a dumped fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if txPath == "" {
				return usageErr("--tx is required")
			}
			m, err := testtool.ReadMockTx(txPath)
			if err != nil {
				return usageErr("%v", err)
			}
			rtx, err := m.Resolved()
			if err != nil {
				return usageErr("%v", err)
			}
			v, err := vm.NewVerifier(cmd.Context(), vm.DefaultConfig())
			if err != nil {
				return err
			}
			defer func() { _ = v.Close(cmd.Context()) }()

			cycles, err := v.Verify(cmd.Context(), rtx, maxCycles)
			var se *vm.ScriptError
			if errors.As(err, &se) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s code=%d group=%s/%d script=%s cycles=%d\n",
					se.Kind, se.Code, se.GroupType, se.GroupIndex, se.ScriptHash, cycles)
				return &exitError{code: exitFailure, err: err}
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK %s cycles=%d\n", m.Hash, cycles)
			return nil
		},
	}
	cmd.Flags().StringVar(&txPath, "tx", "", "path of a dumped fixture (JSON)")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", testtool.DefaultMaxCycles, "cycle budget for the whole transaction")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var (
		raw    string
		table  bool
		fields int
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the items of a canonical dynvec or table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
			if err != nil {
				return usageErr("--hex: %v", err)
			}
			var v codec.DynVec
			if fields > 0 {
				v, err = codec.ParseTable(b, fields)
			} else {
				v, err = codec.ParseDynVec(b)
			}
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			label := "item"
			if table || fields > 0 {
				label = "field"
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "total_size=%d %ss=%d\n", len(b), label, v.Len())
			for i := 0; i < v.Len(); i++ {
				item, err := v.Item(i)
				if err != nil {
					return &exitError{code: exitFailure, err: err}
				}
				_, _ = fmt.Fprintf(out, "%s[%d] offset=%d len=%d %s\n", label, i, v.Offset(i), len(item), hex.EncodeToString(item))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&raw, "hex", "", "canonical bytes as hex")
	cmd.Flags().BoolVar(&table, "table", false, "label items as table fields")
	cmd.Flags().IntVar(&fields, "fields", 0, "require a table with exactly this many fields")
	return cmd
}

func newHashCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the code hash of a script binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return usageErr("--file is required")
			}
			b, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path.
			if err != nil {
				return usageErr("%v", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), chain.DataHash(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "script binary")
	return cmd
}
