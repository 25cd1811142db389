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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/keccak"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/rand"
)

const (
	testPrivateKey = "0xb966663733f9dacb81ccf336508bb334cca74136f6063783f737fb4c12c96c63"
	testPublicKey  = "482a8203fc2c502f1f2f5112ca4abec8a25835c6627bac4c479d93c140ff7d9b" +
		"bc7fb8913e2aaeae26871966af70a739aa0305b5256c4abb8e8d016ccf795f44"
	testHash      = "0x2a6cbba5f734a92891f3548343db1ad63a5aa63b14d17b8af526d5f978f8770e"
	testSignature = "0xa222db3e921f6c3f9fc5f11a75868b1b50343885e38f5b2644a7dd49b6566c4c" +
		"61903c65e439bc19cf6f079687785f60a5e17185af7420674265c7c95e21a2401b"
)

// execute runs a fresh command tree. The random source defaults to
// software unless the test already set ETHCRYPTO_RNG.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	if _, ok := os.LookupEnv("ETHCRYPTO_RNG"); !ok {
		t.Setenv("ETHCRYPTO_RNG", string(rand.ModeSoftware))
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info["version"])
	assert.NotEmpty(t, info["go_version"])

	out, _, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ethcrypto version dev")
}

func TestIdentity(t *testing.T) {
	out, _, err := execute(t, "", "identity", "-o", "json")
	require.NoError(t, err)

	var id identity.Identity
	require.NoError(t, json.Unmarshal([]byte(out), &id))
	assert.Len(t, id.PrivateKey, 66)
	assert.Len(t, id.PublicKey, 128)

	// Deterministic with entropy
	entropy := strings.Repeat("42", 32)
	first, _, err := execute(t, "", "identity", "--entropy", entropy)
	require.NoError(t, err)
	second, _, err := execute(t, "", "identity", "--entropy", "0x"+entropy)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Private Key: 0x")

	_, _, err = execute(t, "", "identity", "--entropy", "4242")
	assert.ErrorIs(t, err, identity.ErrInvalidEntropy)

	_, _, err = execute(t, "", "identity", "--entropy", "zz")
	assert.ErrorContains(t, err, "invalid entropy")
}

func TestPubkey(t *testing.T) {
	out, _, err := execute(t, "", "pubkey", testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, testPublicKey+"\n", out)

	// Private key from stdin
	out, _, err = execute(t, testPrivateKey+"\n", "pubkey", "-")
	require.NoError(t, err)
	assert.Equal(t, testPublicKey+"\n", out)
}

func TestCompressDecompress(t *testing.T) {
	compressed, _, err := execute(t, "", "compress", testPublicKey)
	require.NoError(t, err)
	compressed = strings.TrimSpace(compressed)
	assert.Equal(t, "02"+testPublicKey[:64], compressed)

	out, _, err := execute(t, "", "decompress", compressed)
	require.NoError(t, err)
	assert.Equal(t, testPublicKey, strings.TrimSpace(out))
}

func TestHash(t *testing.T) {
	const want = "0xd59d38b46c2e385e712dced79b33e8e7e5e931138f17435596f1bfee9914f99e"

	out, _, err := execute(t, "", "hash", "0x8ba1f109551bd432803012645ac136ddd64dba72")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	out, _, err = execute(t, "0x8ba1f109551bd432803012645ac136ddd64dba72\n", "hash", "-", "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, want, doc["hash"])
}

func TestHash_StdinKeepsInnerNewlines(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		want  string
	}{
		{"one newline removed", "abc\n", "abc"},
		{"crlf removed", "abc\r\n", "abc"},
		{"second newline kept", "abc\n\n", "abc\n"},
		{"no trailing newline", "abc", "abc"},
		{"lone carriage return kept", "abc\r", "abc\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, "hash", "-")
			require.NoError(t, err)
			assert.Equal(t, keccak.Hash(tt.want)+"\n", out)
		})
	}
}

func TestSignRecoverVerify(t *testing.T) {
	sig, _, err := execute(t, "", "sign", testPrivateKey, testHash)
	require.NoError(t, err)
	assert.Equal(t, testSignature, strings.TrimSpace(sig))

	pub, _, err := execute(t, "", "recover", testSignature, testHash)
	require.NoError(t, err)
	assert.Equal(t, testPublicKey, strings.TrimSpace(pub))

	out, _, err := execute(t, "", "verify", testPublicKey, testSignature, testHash)
	require.NoError(t, err)
	assert.Contains(t, out, "Signature is valid")

	other := "04" + strings.Repeat("0", 128)
	_, _, err = execute(t, "", "verify", other, testSignature, testHash)
	assert.Error(t, err)

	otherID, _, err := execute(t, "", "identity", "-o", "json")
	require.NoError(t, err)
	var id identity.Identity
	require.NoError(t, json.Unmarshal([]byte(otherID), &id))

	out, _, err = execute(t, "", "verify", id.PublicKey, testSignature, testHash, "-o", "json")
	assert.ErrorIs(t, err, errSignatureMismatch)
	assert.Contains(t, out, `"valid": false`)

	_, _, err = execute(t, "", "sign", testPrivateKey, "0x1234")
	assert.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	envelope, _, err := execute(t, "", "encrypt", testPublicKey, "hello ethcrypto")
	require.NoError(t, err)

	var enc ecies.Encrypted
	require.NoError(t, json.Unmarshal([]byte(envelope), &enc))
	assert.Len(t, enc.IV, 32)
	assert.Len(t, enc.MAC, 64)

	out, _, err := execute(t, envelope, "decrypt", testPrivateKey, "-")
	require.NoError(t, err)
	assert.Equal(t, "hello ethcrypto\n", out)

	// Tampered MAC fails unless verification is skipped
	enc.MAC = strings.Repeat("0", 64)
	tampered, err := json.Marshal(enc)
	require.NoError(t, err)

	_, _, err = execute(t, "", "decrypt", testPrivateKey, string(tampered))
	assert.ErrorIs(t, err, ecies.ErrMACMismatch)

	out, _, err = execute(t, "", "decrypt", "--skip-mac", testPrivateKey, string(tampered))
	require.NoError(t, err)
	assert.Equal(t, "hello ethcrypto\n", out)

	_, _, err = execute(t, "", "decrypt", testPrivateKey, "{not json")
	assert.ErrorIs(t, err, ecies.ErrInvalidEnvelope)
}

func TestEncrypt_FixedOptions(t *testing.T) {
	args := []string{
		"encrypt", testPublicKey, "reproducible",
		"--iv", "000102030405060708090a0b0c0d0e0f",
		"--ephem-key", "0x0a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20212223242526272829",
	}
	first, _, err := execute(t, "", args...)
	require.NoError(t, err)
	second, _, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, `"iv": "000102030405060708090a0b0c0d0e0f"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ethcrypto.yaml")
	metricsPath := filepath.Join(dir, "ethcrypto.prom")
	require.NoError(t, os.WriteFile(path, []byte(`
output: json
metrics:
  enabled: true
  textfile: `+metricsPath+`
`), 0600))

	out, _, err := execute(t, "", "--config", path, "hash", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, `"hash": "0x`)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ethcrypto_operations_total")

	// Flags override the file
	out, _, err = execute(t, "", "--config", path, "-o", "text", "hash", "abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0x"))
}

func TestMetricsFileWrittenOnFailure(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "ethcrypto.prom")

	_, _, err := execute(t, "", "sign", testPrivateKey, "0x1234", "--metrics-file", metricsPath)
	require.Error(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ethcrypto_errors_total")
	assert.Contains(t, string(data), `error_type="invalid_hash_length"`)
}

func TestMetricsFileWriteErrorJoinsCommandError(t *testing.T) {
	badPath := filepath.Join(t.TempDir(), "missing", "dir", "ethcrypto.prom")

	_, _, err := execute(t, "", "sign", testPrivateKey, "0x1234", "--metrics-file", badPath)
	assert.ErrorContains(t, err, "hash must be 32 bytes")
	assert.ErrorContains(t, err, "write metrics")
}

func TestConfigFile_FlagFixesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ethcrypto.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rng:\n  mode: pkcs11\n"), 0600))
	t.Setenv("ETHCRYPTO_RNG", "")

	// Invalid on its own: pkcs11 without a module
	_, _, err := execute(t, "", "--config", path, "--rng", "pkcs11", "hash", "abc")
	assert.ErrorContains(t, err, "rng.pkcs11.module")

	out, _, err := execute(t, "", "--config", path, "--rng", "software", "hash", "abc")
	require.NoError(t, err)
	assert.Equal(t, keccak.Hash("abc")+"\n", out)
}

func TestInvalidConfiguration(t *testing.T) {
	_, _, err := execute(t, "", "-o", "table", "hash", "abc")
	assert.ErrorContains(t, err, "invalid output format")

	_, _, err = execute(t, "", "--rng", "dice", "hash", "abc")
	assert.ErrorIs(t, err, rand.ErrUnknownMode)

	_, _, err = execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestVerboseLogsToStderr(t *testing.T) {
	out, stderr, err := execute(t, "", "-v", "sign", testPrivateKey, testHash)
	require.NoError(t, err)
	assert.Equal(t, testSignature, strings.TrimSpace(out))
	assert.Contains(t, stderr, "operation completed")
	assert.NotContains(t, stderr, strings.TrimPrefix(testPrivateKey, "0x"))
}

func TestHealth(t *testing.T) {
	out, _, err := execute(t, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: healthy")
	assert.Contains(t, out, "random_source")

	out, _, err = execute(t, "", "health", "-o", "json")
	require.NoError(t, err)

	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "healthy", report.Status)
	assert.Len(t, report.Checks, 4)
}

func TestPrinter_PrintError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter("json", &buf).PrintError(assert.AnError))
	assert.Contains(t, buf.String(), `"status": "error"`)

	buf.Reset()
	require.NoError(t, NewPrinter("text", &buf).PrintError(assert.AnError))
	assert.True(t, strings.HasPrefix(buf.String(), "Error: "))

	err := NewPrinter("table", &buf).PrintValue("hash", "0x")
	assert.ErrorContains(t, err, "unknown output format")
}
