package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"john@mail.com":   "jo***@mail.com",
		"ab@mail.com":     "***@mail.com",
		" admin@news.com": "ad***@news.com",
		"not-an-email":    "***",
		"a@b@c":           "***",
		"user@":           "***",
	}

	for in, want := range cases {
		require.Equal(t, want, Email(in), in)
	}
}

func TestToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "***", Token(""))
	require.Equal(t, "***", Token("short"))
	require.Equal(t, "***wxyz", Token("abcdefghijklmnopqrstuvwxyz"))
}
