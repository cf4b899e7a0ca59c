package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// RememberTokenBytes determines the byte size of generated remember tokens.
const RememberTokenBytes = 32

// MakeRememberToken generates a new remember token of a predetermined byte size.
func MakeRememberToken() (string, error) {
	return bytesToString(RememberTokenBytes)
}

// randBytes generates n random bytes, or returns an error.
func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// bytesToString generates n random bytes and returns them base64 url-encoded.
func bytesToString(n int) (string, error) {
	b, err := randBytes(n)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NBytes returns the number of bytes encoded in a base64 token string.
func NBytes(base64String string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(base64String)
	if err != nil {
		return -1, err
	}
	return len(b), nil
}

// HMAC wraps crypto/hmac to hash remember tokens before they are stored.
// It is safe for concurrent use.
type HMAC struct {
	key []byte
}

// NewHMAC returns a new HMAC hasher using the provided secret key.
func NewHMAC(key string) HMAC {
	return HMAC{
		key: []byte(key),
	}
}

// Hash hashes the input string using HMAC with the secret key
// provided when the HMAC object was created. A fresh hash state is
// built per call, so concurrent callers never share one.
func (h HMAC) Hash(input string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(input))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}
