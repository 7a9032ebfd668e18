package lib

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// encryptedPrefix marks values sealed by EncryptField so plaintext rows stay readable.
const encryptedPrefix = "enc:"

var ErrInvalidKey = errors.New("encryption key must be 32 bytes for AES-256")

func newGCM(key string) (cipher.AEAD, error) {
	keyBytes := []byte(key)
	if len(keyBytes) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt encrypts plaintext using AES-GCM
func Encrypt(plaintext string, key string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// nonce is prepended to the ciphertext
	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts ciphertext using AES-GCM
func Decrypt(ciphertext string, key string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptField seals a column value when a key is configured and passes it through otherwise.
func EncryptField(plaintext, key string) (string, error) {
	if key == "" || plaintext == "" {
		return plaintext, nil
	}
	sealed, err := Encrypt(plaintext, key)
	if err != nil {
		return "", err
	}
	return encryptedPrefix + sealed, nil
}

// DecryptField reverses EncryptField. Unsealed values are returned as stored.
func DecryptField(stored, key string) (string, error) {
	sealed, ok := strings.CutPrefix(stored, encryptedPrefix)
	if !ok {
		return stored, nil
	}
	if key == "" {
		return "", ErrInvalidKey
	}
	return Decrypt(sealed, key)
}
