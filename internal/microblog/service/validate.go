package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validateUsername(username string) error {
	if username == "" || len(username) > domain.MaxUsernameLen || !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > domain.MaxEmailLen {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLen || n > MaxPasswordLen {
		return ErrInvalidPassword
	}
	return nil
}

func validateAboutMe(about string) error {
	if utf8.RuneCountInString(about) > domain.MaxAboutMeLen {
		return ErrInvalidAboutMe
	}
	return nil
}

// normalizePost trims the body and checks both limits.
func normalizePost(body, language string) (string, string, error) {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > domain.MaxPostLen {
		return "", "", ErrInvalidPost
	}
	language = strings.TrimSpace(language)
	if len(language) > domain.MaxLanguageLen {
		return "", "", ErrInvalidLanguage
	}
	return body, language, nil
}
