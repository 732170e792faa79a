package services

import (
	"fmt"
	"unicode/utf8"

	"github.com/chengshang-tools/launcher-auth/internal/common"
)

func validateUsername(name string, min int) error {
	if utf8.RuneCountInString(name) < min {
		return fmt.Errorf("%w: at least %d characters required", common.ErrInvalidUsername, min)
	}
	return nil
}

func validatePassword(plain string, min int) error {
	if utf8.RuneCountInString(plain) < min {
		return fmt.Errorf("%w: at least %d characters required", common.ErrPasswordTooShort, min)
	}
	return nil
}
