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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-ethcrypto/internal/config"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/rand"
	"github.com/jeremyhahn/go-ethcrypto/pkg/ethcrypto"
	"github.com/jeremyhahn/go-ethcrypto/pkg/logging"
	"github.com/jeremyhahn/go-ethcrypto/pkg/metrics"
)

// Flag names, also used as viper keys. ETHCRYPTO_<NAME> with dashes
// replaced by underscores overrides each of them.
const (
	flagConfig      = "config"
	flagOutput      = "output"
	flagVerbose     = "verbose"
	flagRNG         = "rng"
	flagMetricsFile = "metrics-file"

	envPrefix = "ETHCRYPTO"
)

// app holds the state shared by every subcommand of one invocation
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	logger  *logging.Logger
	toolkit *ethcrypto.Toolkit
}

// Execute runs the root command against the process arguments
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		printer := NewPrinter(outputFormat(cmd), cmd.ErrOrStderr())
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
	}
	return err
}

// NewRootCmd builds a fresh command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ethcrypto",
		Short: "go-ethcrypto CLI - Ethereum-style secp256k1 toolkit",
		Long: `go-ethcrypto CLI creates secp256k1 identities, hashes with Keccak-256,
signs and recovers 65-byte recoverable signatures, and encrypts messages
to public keys with ECIES (AES-256-CBC + HMAC-SHA256).

Random sources:
  - auto:     PKCS#11 (when configured), then TPM 2.0, then software
  - software: operating system CSPRNG
  - tpm2:     TPM 2.0 GetRandom
  - pkcs11:   PKCS#11 C_GenerateRandom`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "config file (YAML)")
	flags.StringP(flagOutput, "o", "text", "output format (text, json, yaml)")
	flags.BoolP(flagVerbose, "v", false, "verbose output")
	flags.String(flagRNG, "", "random source (auto, software, tpm2, pkcs11)")
	flags.String(flagMetricsFile, "", "write Prometheus metrics to this file after the command")

	// Flags are always registered, so the error is unreachable
	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(
		newVersionCmd(a),
		newHealthCmd(a),
		newIdentityCmd(a),
		newPubkeyCmd(a),
		newCompressCmd(a),
		newDecompressCmd(a),
		newHashCmd(a),
		newSignCmd(a),
		newRecoverCmd(a),
		newVerifyCmd(a),
		newEncryptCmd(a),
		newDecryptCmd(a),
	)
	for _, cmd := range rootCmd.Commands() {
		a.withTeardown(cmd)
	}
	return rootCmd
}

// withTeardown wraps cmd.RunE so teardown also runs when the command
// fails. Cobra skips post-run hooks after a RunE error.
func (a *app) withTeardown(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if terr := a.teardown(); terr != nil {
			return errors.Join(err, terr)
		}
		return err
	}
}

// setup loads configuration and builds the toolkit for the command
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Options{
		Debug:  cfg.Debug() || a.v.GetBool(flagVerbose),
		Format: logging.Format(strings.ToLower(cfg.Logging.Format)),
		Output: cmd.ErrOrStderr(),
	})

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	// version needs no random source
	if !needsToolkit(cmd) {
		return nil
	}

	toolkit, err := ethcrypto.New(&ethcrypto.Config{
		RNG:    &cfg.RNG,
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	a.toolkit = toolkit
	a.logger.Debugf("using random source %s", toolkit.Source())
	return nil
}

// loadConfig merges the config file (or defaults) with flags and
// environment variables. Flags take precedence.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := a.v.GetString(flagConfig); path != "" {
		cfg, err = config.Read(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Env()
	}

	if a.v.IsSet(flagOutput) {
		cfg.Output = a.v.GetString(flagOutput)
	}
	if a.v.IsSet(flagRNG) {
		cfg.RNG.Mode = rand.Mode(strings.ToLower(a.v.GetString(flagRNG)))
	}
	if a.v.IsSet(flagMetricsFile) {
		cfg.Metrics.Textfile = a.v.GetString(flagMetricsFile)
	}
	if a.v.GetBool(flagVerbose) {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// teardown releases the random source and exports metrics
func (a *app) teardown() error {
	var errs []error
	if a.toolkit != nil {
		if err := a.toolkit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close random source: %w", err))
		}
		a.toolkit = nil
	}
	if a.cfg != nil && a.cfg.Metrics.Enabled && a.cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// printer returns a Printer for the configured output format
func (a *app) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(a.cfg.Output, cmd.OutOrStdout())
}

func needsToolkit(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationNoToolkit] == ""
}

const annotationNoToolkit = "ethcrypto/no-toolkit"

// outputFormat reads the --output flag without requiring setup to have
// succeeded, so configuration errors are still printed in the requested
// format.
func outputFormat(cmd *cobra.Command) string {
	if f := cmd.PersistentFlags().Lookup(flagOutput); f != nil && f.Changed {
		return f.Value.String()
	}
	if env := os.Getenv(envPrefix + "_OUTPUT"); env != "" {
		return env
	}
	return string(OutputFormatText)
}

// readArg returns arg, or all of stdin when arg is "-". A single trailing
// "\n" or "\r\n" is removed from stdin; anything before it is kept.
func readArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	s := string(b)
	if trimmed, ok := strings.CutSuffix(s, "\n"); ok {
		s = strings.TrimSuffix(trimmed, "\r")
	}
	return s, nil
}
