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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/ecies"
)

func newEncryptCmd(a *app) *cobra.Command {
	var opts ecies.EncryptionOptions

	cmd := &cobra.Command{
		Use:   "encrypt PUBLIC_KEY MESSAGE",
		Short: "Encrypt a message to a public key with ECIES",
		Long: `Encrypt MESSAGE to PUBLIC_KEY and print the JSON envelope
{iv, ephemPublicKey, ciphertext, mac}.

Use "-" for MESSAGE to read it from stdin. --iv and --ephem-key pin the
random parts of the envelope for reproducible output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := readArg(cmd, args[1])
			if err != nil {
				return err
			}
			enc, err := a.toolkit.EncryptWithPublicKey(cmd.Context(), args[0], message, &opts)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintEncrypted(enc)
		},
	}
	cmd.Flags().StringVar(&opts.IV, "iv", "", "16-byte hex IV")
	cmd.Flags().StringVar(&opts.EphemPrivateKey, "ephem-key", "", "32-byte hex ephemeral private key")
	return cmd
}

func newDecryptCmd(a *app) *cobra.Command {
	var opts ecies.DecryptOptions

	cmd := &cobra.Command{
		Use:   "decrypt PRIVATE_KEY ENVELOPE",
		Short: "Decrypt an ECIES envelope",
		Long: `Decrypt ENVELOPE, the JSON object printed by encrypt, with PRIVATE_KEY.

Use "-" for ENVELOPE to read it from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readArg(cmd, args[1])
			if err != nil {
				return err
			}
			var enc ecies.Encrypted
			if err := json.Unmarshal([]byte(raw), &enc); err != nil {
				return fmt.Errorf("%w: %w", ecies.ErrInvalidEnvelope, err)
			}
			message, err := a.toolkit.DecryptWithPrivateKey(cmd.Context(), args[0], &enc, &opts)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("message", message)
		},
	}
	cmd.Flags().BoolVar(&opts.SkipMACVerification, "skip-mac", false, "decrypt without verifying the MAC")
	return cmd
}
