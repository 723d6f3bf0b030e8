package transfer

import (
	"crypto/rand"
	"encoding/base32"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// Each transfer request gets its own throwaway HOTP secret at counter 0,
// so a code is only ever valid for the request it was issued for.

func generateSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

func generateCode(secret string, digits int) (string, error) {
	return hotp.GenerateCodeCustom(secret, 0, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
}

func validateCode(code, secret string, digits int) bool {
	ok, err := hotp.ValidateCustom(code, 0, secret, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
