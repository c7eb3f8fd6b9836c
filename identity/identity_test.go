package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyIsNone(t *testing.T) {
	id, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, KindNone, id.Kind())
	require.Equal(t, "", id.Canonical())
}

func TestParseEthereumZeroAddress(t *testing.T) {
	s := "eth|0x" + repeat("0", 40)
	id, err := Parse(s)
	require.NoError(t, err)
	require.Equal(t, KindEthereum, id.Kind())
	addr, ok := id.EthereumAddress()
	require.True(t, ok)
	require.Equal(t, [20]byte{}, addr)
	require.Equal(t, s, id.Canonical())
}

func TestParseEthereumWrongLength(t *testing.T) {
	s := "eth|0x" + repeat("0", 39)
	_, err := Parse(s)
	require.ErrorIs(t, err, ErrInvalidEthereumAddr)
}

func TestParseGitHub(t *testing.T) {
	id, err := Parse("git|123|username")
	require.NoError(t, err)
	require.Equal(t, KindGitHub, id.Kind())
	githubID, username, ok := id.GitHubID()
	require.True(t, ok)
	require.Equal(t, uint64(123), githubID)
	require.Equal(t, "username", username)
	require.Equal(t, "git|123|username", id.Canonical())
}

func TestParseGitHubNonIntegerID(t *testing.T) {
	_, err := Parse("git|abc|username")
	require.ErrorIs(t, err, ErrInvalidGitHubID)
}

func TestParseUnknownTag(t *testing.T) {
	_, err := Parse("ftp|something")
	require.ErrorIs(t, err, ErrUnknownTag)
}

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"eth|0x" + repeat("ab", 20),
		"git|9999999|octocat",
	}
	for _, s := range cases {
		id, err := Parse(s)
		require.NoError(t, err)
		reparsed, err := Parse(id.Canonical())
		require.NoError(t, err)
		require.Equal(t, id, reparsed)
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
