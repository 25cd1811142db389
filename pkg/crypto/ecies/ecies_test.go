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

package ecies

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/identity"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/pubkey"
	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/rand"
	"github.com/jeremyhahn/go-ethcrypto/pkg/signing"
)

var testVectors = []struct {
	privateKey string
	publicKey  string
	message    string
}{
	{
		privateKey: "0x107be946709e41b7895eea9f2dacf998a0a9124acbb786f0fd1a826101581a07",
		publicKey: "bf1cc3154424dc22191941d9f4f50b063a2b663a2337e5548abea633c1d06ece" +
			"acf2b81dd326d278cd992d5e03b0df140f2df389ac9a1c2415a220a4a9e8c046",
		message: "Three wickets in his last over, four fours from his next",
	},
	{
		privateKey: "0x66f12873d3a6255a36b5ab7cb061b4b2b20d089168367ac364ff05a174211ce9",
		publicKey: "96ad3f1cffb44bf29e8fe5daad5282dac2b4c106efcf7dd7d1d21fa43a37a78d" +
			"f54d3a475cd6b21304ebac808722c97a8dbff9feb3066b865b8682a819ab9a49",
		message: "Lifted over extra cover to move to 16 from seven deliveries",
	},
	{
		privateKey: "0x3980cfeea16a573fddae342ee591bdccfb15906aec062518caa0978111ecfa0a",
		publicKey: "cd1f6b9bc885ae4fc5262528ab8b768c993e1a493b114cea7522fb99b9b30be7" +
			"1134e69782718e07487a828e46693c9762913542fde82e662506341266652ba0",
		message: "Alzarri Joseph plays a lovely classical drive through the covers for four",
	},
}

const (
	fixedIV        = "000102030405060708090a0b0c0d0e0f"
	fixedEphemeral = "0x0a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20212223242526272829"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("rng offline") }

func TestEncryptDecrypt_Vectors(t *testing.T) {
	rng := rand.NewSoftwareResolver()

	for _, tv := range testVectors {
		t.Run(tv.message[:12], func(t *testing.T) {
			enc, err := Encrypt(rng, tv.publicKey, tv.message, nil)
			require.NoError(t, err)

			assert.Len(t, enc.IV, 2*IVSize)
			assert.Len(t, enc.EphemPublicKey, 130)
			assert.True(t, strings.HasPrefix(enc.EphemPublicKey, "04"))
			assert.Len(t, enc.MAC, 2*MACSize)
			assert.Zero(t, len(enc.Ciphertext)%32)

			msg, err := Decrypt(tv.privateKey, enc, nil)
			require.NoError(t, err)
			assert.Equal(t, tv.message, msg)
		})
	}
}

func TestEncrypt_AcceptsAllKeyEncodings(t *testing.T) {
	tv := testVectors[0]
	compressed, err := pubkey.Compress(tv.publicKey)
	require.NoError(t, err)

	for _, key := range []string{tv.publicKey, "04" + tv.publicKey, "0x04" + tv.publicKey, compressed} {
		enc, err := Encrypt(rand.NewSoftwareResolver(), key, tv.message, nil)
		require.NoError(t, err, key)

		msg, err := Decrypt(tv.privateKey, enc, nil)
		require.NoError(t, err)
		assert.Equal(t, tv.message, msg)
	}
}

func TestEncrypt_Deterministic(t *testing.T) {
	tv := testVectors[1]
	opts := &EncryptionOptions{IV: fixedIV, EphemPrivateKey: fixedEphemeral}

	// No random source is needed when both overrides are set
	e1, err := Encrypt(nil, tv.publicKey, tv.message, opts)
	require.NoError(t, err)
	e2, err := Encrypt(nil, tv.publicKey, tv.message, opts)
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
	assert.Equal(t, fixedIV, e1.IV)

	ephemPub, err := identity.PublicKeyByPrivateKey(fixedEphemeral)
	require.NoError(t, err)
	assert.Equal(t, "04"+ephemPub, e1.EphemPublicKey)
}

// TestEncrypt_Construction rebuilds the envelope from the underlying
// primitives to pin down the byte layout.
func TestEncrypt_Construction(t *testing.T) {
	tv := testVectors[2]
	enc, err := Encrypt(nil, tv.publicKey, tv.message, &EncryptionOptions{IV: fixedIV, EphemPrivateKey: fixedEphemeral})
	require.NoError(t, err)

	ephemBytes, _ := hex.DecodeString(fixedEphemeral[2:])
	ephem := secp256k1.PrivKeyFromBytes(ephemBytes)
	recipient, err := pubkey.Parse(tv.publicKey)
	require.NoError(t, err)

	shared := secp256k1.GenerateSharedSecret(ephem, recipient)
	digest := sha512.Sum512(shared)

	iv, _ := hex.DecodeString(fixedIV)
	ciphertext, err := cbcEncrypt(digest[:32], iv, []byte(tv.message))
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(ciphertext), enc.Ciphertext)

	var macInput []byte
	macInput = append(macInput, iv...)
	macInput = append(macInput, ephem.PubKey().SerializeUncompressed()...)
	macInput = append(macInput, ciphertext...)
	assert.Equal(t, hex.EncodeToString(signing.HMACSHA256Sign(digest[32:], macInput)), enc.MAC)
}

func TestEncrypt_EmptyAndUnicodeMessages(t *testing.T) {
	tv := testVectors[0]
	for _, msg := range []string{"", "a", strings.Repeat("x", 16), "héllo wörld \U0002070E"} {
		enc, err := Encrypt(rand.NewSoftwareResolver(), tv.publicKey, msg, nil)
		require.NoError(t, err)

		got, err := Decrypt(tv.privateKey, enc, nil)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

func TestEncrypt_InvalidInput(t *testing.T) {
	tv := testVectors[0]
	rng := rand.NewSoftwareResolver()

	_, err := Encrypt(nil, tv.publicKey, "msg", nil)
	assert.Error(t, err)

	_, err = Encrypt(rng, "not-a-key", "msg", nil)
	assert.ErrorIs(t, err, pubkey.ErrInvalidPublicKey)

	_, err = Encrypt(rng, tv.publicKey, "msg", &EncryptionOptions{IV: "0011"})
	assert.ErrorIs(t, err, ErrInvalidIV)

	_, err = Encrypt(rng, tv.publicKey, "msg", &EncryptionOptions{IV: "zz"})
	assert.ErrorIs(t, err, ErrInvalidIV)

	_, err = Encrypt(rng, tv.publicKey, "msg", &EncryptionOptions{EphemPrivateKey: "0x00"})
	assert.ErrorIs(t, err, identity.ErrInvalidPrivateKey)

	_, err = Encrypt(failingReader{}, tv.publicKey, "msg", nil)
	assert.ErrorContains(t, err, "rng offline")
}

func TestEncrypt_RedrawsInvalidEphemeralScalar(t *testing.T) {
	tv := testVectors[0]
	// First draw is above the curve order, second is valid, then the IV
	var src bytes.Buffer
	src.Write(bytes.Repeat([]byte{0xff}, 32))
	src.Write(bytes.Repeat([]byte{0x07}, 32))
	src.Write(bytes.Repeat([]byte{0x01}, IVSize))

	enc, err := Encrypt(&src, tv.publicKey, tv.message, nil)
	require.NoError(t, err)

	ephemPub, err := identity.PublicKeyByPrivateKey("0x" + strings.Repeat("07", 32))
	require.NoError(t, err)
	assert.Equal(t, "04"+ephemPub, enc.EphemPublicKey)
	assert.Equal(t, strings.Repeat("01", IVSize), enc.IV)
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc, err := Encrypt(rand.NewSoftwareResolver(), testVectors[0].publicKey, testVectors[0].message, nil)
	require.NoError(t, err)

	_, err = Decrypt(testVectors[1].privateKey, enc, nil)
	assert.ErrorIs(t, err, ErrMACMismatch)
}

func TestDecrypt_Tampering(t *testing.T) {
	tv := testVectors[0]
	otherEphem, err := identity.PublicKeyByPrivateKey(testVectors[2].privateKey)
	require.NoError(t, err)

	flip := func(s string) string {
		b, _ := hex.DecodeString(s)
		b[len(b)-1] ^= 0x01
		return hex.EncodeToString(b)
	}

	tests := []struct {
		name   string
		tamper func(*Encrypted)
	}{
		{"iv", func(e *Encrypted) { e.IV = flip(e.IV) }},
		{"ephemPublicKey", func(e *Encrypted) { e.EphemPublicKey = "04" + otherEphem }},
		{"ciphertext", func(e *Encrypted) { e.Ciphertext = flip(e.Ciphertext) }},
		{"mac", func(e *Encrypted) { e.MAC = flip(e.MAC) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encrypt(rand.NewSoftwareResolver(), tv.publicKey, tv.message, nil)
			require.NoError(t, err)

			tt.tamper(enc)
			_, err = Decrypt(tv.privateKey, enc, nil)
			assert.ErrorIs(t, err, ErrMACMismatch)
		})
	}
}

func TestDecrypt_SkipMACVerification(t *testing.T) {
	tv := testVectors[1]
	enc, err := Encrypt(rand.NewSoftwareResolver(), tv.publicKey, tv.message, nil)
	require.NoError(t, err)

	// Untampered envelopes decrypt regardless of the MAC field
	enc.MAC = ""
	msg, err := Decrypt(tv.privateKey, enc, &DecryptOptions{SkipMACVerification: true})
	require.NoError(t, err)
	assert.Equal(t, tv.message, msg)

	_, err = Decrypt(tv.privateKey, enc, nil)
	assert.ErrorIs(t, err, ErrMACMismatch)
}

func TestDecrypt_CipherFailure(t *testing.T) {
	tv := testVectors[0]
	skip := &DecryptOptions{SkipMACVerification: true}

	enc, err := Encrypt(rand.NewSoftwareResolver(), tv.publicKey, tv.message, nil)
	require.NoError(t, err)

	truncated := *enc
	truncated.Ciphertext = enc.Ciphertext[:len(enc.Ciphertext)-2]
	_, err = Decrypt(tv.privateKey, &truncated, skip)
	assert.ErrorIs(t, err, ErrCipherFailure)

	empty := *enc
	empty.Ciphertext = ""
	_, err = Decrypt(tv.privateKey, &empty, skip)
	assert.ErrorIs(t, err, ErrCipherFailure)

	shortIV := *enc
	shortIV.IV = "0011"
	_, err = Decrypt(tv.privateKey, &shortIV, skip)
	assert.ErrorIs(t, err, ErrInvalidIV)
}

func TestDecrypt_InvalidEnvelope(t *testing.T) {
	tv := testVectors[0]
	enc, err := Encrypt(rand.NewSoftwareResolver(), tv.publicKey, tv.message, nil)
	require.NoError(t, err)

	_, err = Decrypt(tv.privateKey, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	bad := *enc
	bad.EphemPublicKey = "04" + strings.Repeat("11", 64)
	_, err = Decrypt(tv.privateKey, &bad, nil)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	bad = *enc
	bad.Ciphertext = "xyz"
	_, err = Decrypt(tv.privateKey, &bad, nil)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	bad = *enc
	bad.MAC = "not hex"
	_, err = Decrypt(tv.privateKey, &bad, nil)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	_, err = Decrypt("0x1234", enc, nil)
	assert.ErrorIs(t, err, identity.ErrInvalidPrivateKey)
}

func TestDecrypt_InvalidUTF8(t *testing.T) {
	tv := testVectors[0]
	enc, err := Encrypt(rand.NewSoftwareResolver(), tv.publicKey, string([]byte{'o', 'k', 0xff, 0xfe}), nil)
	require.NoError(t, err)

	msg, err := Decrypt(tv.privateKey, enc, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok\uFFFD", msg)
}

func TestEncrypted_JSON(t *testing.T) {
	enc, err := Encrypt(nil, testVectors[0].publicKey, "json", &EncryptionOptions{IV: fixedIV, EphemPrivateKey: fixedEphemeral})
	require.NoError(t, err)

	data, err := json.Marshal(enc)
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.ElementsMatch(t, []string{"iv", "ephemPublicKey", "ciphertext", "mac"}, keys(fields))
}

func TestCBC_Padding(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	iv := make([]byte, IVSize)

	for n := range 40 {
		pt := bytes.Repeat([]byte{'p'}, n)
		ct, err := cbcEncrypt(key, iv, pt)
		require.NoError(t, err)
		assert.Equal(t, (n/16+1)*16, len(ct))

		got, err := cbcDecrypt(key, iv, ct)
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}

	// A final block whose plaintext ends in 0x00 has invalid padding
	block := make([]byte, 16)
	forged := make([]byte, 16)
	c, err := aes.NewCipher(key)
	require.NoError(t, err)
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(forged, block)
	_, err = cbcDecrypt(key, iv, forged)
	assert.ErrorIs(t, err, ErrCipherFailure)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
