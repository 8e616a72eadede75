package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

const SignatureHeader = "x-paystack-signature"

// VerifySignature checks the provider's HMAC-SHA512 hex digest of the raw
// request body against the header value. Runs before the body is parsed;
// the comparison is constant time.
func VerifySignature(secret, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
