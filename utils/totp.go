package utils

import (
	"os"

	"github.com/pquerna/otp/totp"
)

func totpIssuer() string {
	if issuer := os.Getenv("TOTP_ISSUER"); issuer != "" {
		return issuer
	}
	return "Petty Cash"
}

func GenerateTOTPSecret(email string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer(),
		AccountName: email,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

func VerifyTOTP(secret, code string) (bool, error) {
	valid := totp.Validate(code, secret)
	return valid, nil
}
