package encryption

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Derived key is cached per process, so the secret must be in place
	// before the first encrypt/decrypt call.
	os.Setenv("ENCRYPTION_KEY", "unit-test-encryption-key-0123456789abcdef")
	os.Exit(m.Run())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	for _, plaintext := range []string{
		"Shipped v1",
		"a",
		"Closed the Q3 deal with a 40% margin 🎉",
		"title:with:colons",
		"",
	} {
		envelope, err := EncryptText(plaintext)
		require.NoError(t, err)
		require.Equal(t, plaintext, DecryptText(envelope), "round trip should restore plaintext")
	}
}

func TestEncryptProducesEnvelope(t *testing.T) {
	envelope, err := EncryptText("Shipped v1")
	require.NoError(t, err)

	parts := strings.Split(envelope, ":")
	require.Len(t, parts, 3, "envelope should be iv:tag:ciphertext")
	require.Len(t, parts[0], 32, "iv should be 16 bytes hex encoded")
	require.Len(t, parts[1], 32, "tag should be 16 bytes hex encoded")
	require.NotContains(t, envelope, "Shipped v1")
	require.True(t, IsEncrypted(envelope))
}

func TestEncryptUsesFreshIV(t *testing.T) {
	first, err := EncryptText("same input")
	require.NoError(t, err)
	second, err := EncryptText("same input")
	require.NoError(t, err)
	require.NotEqual(t, first, second, "every call should use a fresh IV")
}

func TestDecryptFailsOpen(t *testing.T) {
	// Values that are not envelopes come back unchanged
	for _, input := range []string{
		"legacy plaintext title",
		"",
		"one:two",
		"a:b:c:d",
		"zz:yy:xx", // not hex
	} {
		require.Equal(t, input, DecryptText(input))
	}

	// A tampered envelope fails the auth tag check and also falls through
	envelope, err := EncryptText("Shipped v1")
	require.NoError(t, err)
	parts := strings.Split(envelope, ":")
	tampered := parts[0] + ":" + strings.Repeat("0", 32) + ":" + parts[2]
	require.Equal(t, tampered, DecryptText(tampered))
}

func TestIsEncrypted(t *testing.T) {
	envelope, err := EncryptText("anything at all")
	require.NoError(t, err)
	require.True(t, IsEncrypted(envelope))

	require.False(t, IsEncrypted("plain text"))
	require.False(t, IsEncrypted("a:b:c"))
	require.False(t, IsEncrypted(strings.Repeat("g", 32)+":"+strings.Repeat("0", 32)+":ff"))

	// Coincidental shape match is reported as encrypted; diagnostic only
	require.True(t, IsEncrypted(strings.Repeat("a", 32)+":"+strings.Repeat("b", 32)+":deadbeef"))
}

func TestValidateKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")
	require.Error(t, ValidateKey(), "missing secret must be rejected")

	t.Setenv("ENCRYPTION_KEY", "too-short")
	require.Error(t, ValidateKey(), "short secret must be rejected")

	t.Setenv("ENCRYPTION_KEY", strings.Repeat("x", 32))
	require.NoError(t, ValidateKey())
}
