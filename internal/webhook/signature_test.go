package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, body []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	secret := []byte("sk_test_secret")
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, VerifySignature(secret, body, sign(secret, body)))
}

func TestVerifySignature_TamperedBody(t *testing.T) {
	secret := []byte("sk_test_secret")
	body := []byte(`{"event":"charge.success"}`)
	signature := sign(secret, body)

	assert.False(t, VerifySignature(secret, []byte(`{"event":"charge.success","data":{"amount":1}}`), signature))
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	signature := sign([]byte("sk_other_secret"), body)

	assert.False(t, VerifySignature([]byte("sk_test_secret"), body, signature))
}

func TestVerifySignature_EmptySignature(t *testing.T) {
	assert.False(t, VerifySignature([]byte("sk_test_secret"), []byte(`{}`), ""))
}
