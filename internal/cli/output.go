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
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/health"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintValue prints a single named result such as a hash or signature
func (p *Printer) PrintValue(name, value string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]string{name: value})
	case OutputFormatYAML:
		return p.printYAML(map[string]string{name: value})
	case OutputFormatText:
		_, err := fmt.Fprintln(p.writer, value)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintIdentity prints a key pair
func (p *Printer) PrintIdentity(id *identity.Identity) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(id)
	case OutputFormatYAML:
		return p.printYAML(id)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Private Key: %s\n", id.PrivateKey)
		fmt.Fprintf(p.writer, "Public Key:  %s\n", id.PublicKey)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintEncrypted prints an ECIES envelope. The text format is JSON so the
// output can be fed back to decrypt unchanged.
func (p *Printer) PrintEncrypted(enc *ecies.Encrypted) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatText:
		return p.printJSON(enc)
	case OutputFormatYAML:
		return p.printYAML(enc)
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerification prints the outcome of a signature check
func (p *Printer) PrintVerification(publicKey string, valid bool) error {
	result := map[string]interface{}{
		"publicKey": publicKey,
		"valid":     valid,
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(result)
	case OutputFormatYAML:
		return p.printYAML(result)
	case OutputFormatText:
		if valid {
			fmt.Fprintln(p.writer, "Signature is valid")
		} else {
			fmt.Fprintln(p.writer, "Signature is NOT valid")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintHealth prints self test results
func (p *Printer) PrintHealth(status health.Status, results []health.CheckResult) error {
	report := map[string]interface{}{
		"status": status,
		"checks": results,
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(report)
	case OutputFormatYAML:
		return p.printYAML(report)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Status: %s\n", status)
		for _, r := range results {
			detail := r.Message
			if r.Error != "" {
				detail = r.Error
			}
			fmt.Fprintf(p.writer, "  %-14s %-10s %s\n", r.Name, r.Status, detail)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVersion prints build information
func (p *Printer) PrintVersion(info map[string]string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(info)
	case OutputFormatYAML:
		return p.printYAML(info)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "ethcrypto version %s\n", info["version"])
		fmt.Fprintf(p.writer, "Git commit: %s\n", info["commit"])
		fmt.Fprintf(p.writer, "Build date: %s\n", info["build_date"])
		fmt.Fprintf(p.writer, "Go version: %s\n", info["go_version"])
		fmt.Fprintf(p.writer, "OS/Arch: %s/%s\n", info["os"], info["arch"])
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatYAML:
		return p.printYAML(map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		_, printErr := fmt.Fprintf(p.writer, "Error: %v\n", err)
		return printErr
	}
}

// printJSON prints data as indented JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// printYAML prints data as YAML
func (p *Printer) printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(p.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}
