package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Column limits shared by validation and the schema.
const (
	MaxUsernameLen = 64
	MaxEmailLen    = 120
	MaxAboutMeLen  = 140
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // argon2id PHC string, empty until a password is set
	AboutMe      string
	LastSeen     time.Time
	CreatedAt    time.Time
}

// AvatarURL returns the Gravatar identicon URL for the user's email at the
// given pixel size.
func (u User) AvatarURL(size int) string {
	sum := md5.Sum([]byte(strings.ToLower(u.Email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(sum[:]), size)
}
