package service

import (
	"fmt"

	"github.com/google/uuid"
)

// TwoFactorService is a placeholder that satisfies the two-factor API
// surface. It provides NO real second-factor security: VerifyCode accepts
// any six ASCII digits. A faithful second factor needs HOTP/TOTP, which is
// out of scope until the system owner signs off on the behavior change.
type TwoFactorService struct{}

func NewTwoFactorService() *TwoFactorService {
	return &TwoFactorService{}
}

func (s *TwoFactorService) GenerateSecret() string {
	return "placeholder-" + uuid.NewString()
}

func (s *TwoFactorService) QRCodeURL(secret, account string) string {
	return fmt.Sprintf("otpauth://totp/vionex:%s?secret=%s&issuer=vionex", account, secret)
}

// VerifyCode accepts any syntactically plausible code. Placeholder only.
func (s *TwoFactorService) VerifyCode(secret, code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
