// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-ethcrypto.
//
// go-ethcrypto is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errSignatureMismatch = errors.New("signature does not match public key")

func newSignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign PRIVATE_KEY HASH",
		Short: "Sign a 32-byte hash",
		Long: `Sign a 32-byte hex hash and print the 65-byte r || s || v signature.

Use "-" for PRIVATE_KEY to read it from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, err := readArg(cmd, args[0])
			if err != nil {
				return err
			}
			sig, err := a.toolkit.Sign(cmd.Context(), privateKey, args[1])
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("signature", sig)
		},
	}
}

func newRecoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recover SIGNATURE HASH",
		Short: "Recover the public key that produced a signature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.toolkit.RecoverPublicKey(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("publicKey", pub)
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify PUBLIC_KEY SIGNATURE HASH",
		Short: "Check that PUBLIC_KEY produced SIGNATURE over HASH",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			valid, err := a.toolkit.VerifySignature(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if err := a.printer(cmd).PrintVerification(args[0], valid); err != nil {
				return err
			}
			if !valid {
				return errSignatureMismatch
			}
			return nil
		},
	}
}
