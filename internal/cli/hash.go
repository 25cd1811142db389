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
	"github.com/spf13/cobra"
)

func newHashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash TEXT",
		Short: "Keccak-256 hash the UTF-8 bytes of TEXT",
		Long: `Keccak-256 hash the UTF-8 bytes of TEXT.

Use "-" to read TEXT from stdin. A single trailing newline is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readArg(cmd, args[0])
			if err != nil {
				return err
			}
			hash, err := a.toolkit.Keccak256(cmd.Context(), text)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintValue("hash", hash)
		},
	}
}
