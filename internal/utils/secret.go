package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealedPrefix marks values sealed by SealSecret
const sealedPrefix = "sb1:"

var ErrSecretKeyMissing = errors.New("secret is sealed but no encryption key is configured")

func secretKey(passphrase string) *[32]byte {
	key := sha256.Sum256([]byte(passphrase))
	return &key
}

// IsSealed reports whether value was produced by SealSecret
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

// SealSecret encrypts value with a key derived from passphrase.
// Without a passphrase the value is returned as is.
func SealSecret(value, passphrase string) (string, error) {
	if passphrase == "" || value == "" || IsSealed(value) {
		return value, nil
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, secretKey(passphrase))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// OpenSecret reverses SealSecret. Values without the sealed prefix are returned as is.
func OpenSecret(value, passphrase string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if passphrase == "" {
		return "", ErrSecretKeyMissing
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", err
	}
	if len(raw) < 24+secretbox.Overhead {
		return "", errors.New("sealed secret too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	opened, ok := secretbox.Open(nil, raw[24:], &nonce, secretKey(passphrase))
	if !ok {
		return "", errors.New("failed to open sealed secret")
	}
	return string(opened), nil
}
