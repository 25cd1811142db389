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
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// cbcEncrypt encrypts plaintext with AES-CBC after PKCS#7 padding.
func cbcEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCipherFailure, err)
	}

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	buf := make([]byte, len(plaintext)+padLen)
	copy(buf, plaintext)
	for i := len(plaintext); i < len(buf); i++ {
		buf[i] = byte(padLen)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(buf, buf)
	return buf, nil
}

// cbcDecrypt decrypts AES-CBC ciphertext and removes PKCS#7 padding.
func cbcDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d",
			ErrCipherFailure, len(ciphertext), aes.BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCipherFailure, err)
	}

	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(buf, ciphertext)

	padLen := int(buf[len(buf)-1])
	if padLen == 0 || padLen > aes.BlockSize {
		clear(buf)
		return nil, fmt.Errorf("%w: bad padding", ErrCipherFailure)
	}
	for _, b := range buf[len(buf)-padLen:] {
		if int(b) != padLen {
			clear(buf)
			return nil, fmt.Errorf("%w: bad padding", ErrCipherFailure)
		}
	}
	return buf[:len(buf)-padLen], nil
}
