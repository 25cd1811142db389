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

	"github.com/jeremyhahn/go-ethcrypto/pkg/health"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run known-answer self tests and check the random source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := a.toolkit.SelfTest(cmd.Context())
			status := health.AggregateStatus(results)
			if err := a.printer(cmd).PrintHealth(status, results); err != nil {
				return err
			}
			if status == health.StatusUnhealthy {
				return fmt.Errorf("self test failed")
			}
			return nil
		},
	}
}
