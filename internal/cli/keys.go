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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/hexutil"
)

func newIdentityCmd(a *app) *cobra.Command {
	var entropy string

	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Create a new secp256k1 key pair",
		Long: `Create a new private key and its raw public key.

Without --entropy the key is drawn from the configured random source.
With --entropy (hex, at least 32 bytes) the private key is the Keccak-256
digest of the entropy, so the same entropy always yields the same key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []byte
			if cmd.Flags().Changed("entropy") {
				b, err := hexutil.Decode(entropy)
				if err != nil {
					return fmt.Errorf("invalid entropy: %w", err)
				}
				seed = b
			}

			id, err := a.toolkit.CreateIdentity(cmd.Context(), seed)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintIdentity(id)
		},
	}
	cmd.Flags().StringVar(&entropy, "entropy", "", "hex entropy used to derive the key deterministically")
	return cmd
}

func newPubkeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey PRIVATE_KEY",
		Short: "Derive the raw public key of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, err := readArg(cmd, args[0])
			if err != nil {
				return err
			}
			pub, err := a.toolkit.PublicKeyByPrivateKey(cmd.Context(), privateKey)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("publicKey", pub)
		},
	}
}

func newCompressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compress PUBLIC_KEY",
		Short: "Convert a public key to the 33-byte compressed form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.toolkit.CompressPublicKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("publicKey", pub)
		},
	}
}

func newDecompressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decompress PUBLIC_KEY",
		Short: "Convert a public key to the raw 64-byte form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.toolkit.DecompressPublicKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("publicKey", pub)
		},
	}
}
