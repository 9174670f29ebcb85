package service

import (
	"strings"

	"github.com/google/uuid"
)

const resetTokenPrefix = "reset:"

// GeneratePasswordResetToken builds the reset token handed to the mail
// collaborator. The token is a plain marker, not a signed credential; the
// reset flow revalidates it against the account before any change.
func GeneratePasswordResetToken(userID uuid.UUID) string {
	return resetTokenPrefix + userID.String()
}

// ParsePasswordResetToken extracts the user id from a reset token, reporting
// false for anything that does not parse.
func ParsePasswordResetToken(token string) (uuid.UUID, bool) {
	idStr, found := strings.CutPrefix(token, resetTokenPrefix)
	if !found {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
