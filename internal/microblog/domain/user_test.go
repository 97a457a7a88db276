package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvatarURL(t *testing.T) {
	u := User{Email: "John@Example.com"}

	// md5("john@example.com")
	want := "https://www.gravatar.com/avatar/d4c74594d841139328695756648b6bd6?d=identicon&s=128"
	require.Equal(t, want, u.AvatarURL(128))

	t.Run("pure", func(t *testing.T) {
		require.Equal(t, u.AvatarURL(36), u.AvatarURL(36))
	})

	t.Run("case insensitive", func(t *testing.T) {
		lower := User{Email: "john@example.com"}
		require.Equal(t, lower.AvatarURL(80), u.AvatarURL(80))
	})

	t.Run("size in query", func(t *testing.T) {
		require.Contains(t, u.AvatarURL(36), "&s=36")
	})
}
