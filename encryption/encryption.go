// encryption/encryption.go - Field-level encryption for achievement titles
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/scrypt"
)

const (
	// Fixed KDF salt. The configured secret is the real entropy source;
	// the salt only namespaces the derived key.
	keySalt = "achievement-salt"

	ivSize  = 16
	tagSize = 16
	keySize = 32

	// scrypt cost parameters
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

var (
	keyOnce   sync.Once
	cachedKey []byte
	cachedErr error
)

// ValidateKey checks that ENCRYPTION_KEY is usable. Called at startup so a
// missing or weak secret fails the process instead of individual requests.
func ValidateKey() error {
	secret := os.Getenv("ENCRYPTION_KEY")
	if secret == "" {
		return errors.New("ENCRYPTION_KEY environment variable is required for data encryption")
	}
	if len(secret) < 32 {
		return errors.New("ENCRYPTION_KEY must be at least 32 characters long")
	}
	return nil
}

// derivedKey derives and caches the AES key for the process lifetime.
func derivedKey() ([]byte, error) {
	keyOnce.Do(func() {
		if err := ValidateKey(); err != nil {
			cachedErr = err
			return
		}
		cachedKey, cachedErr = scrypt.Key([]byte(os.Getenv("ENCRYPTION_KEY")), []byte(keySalt), scryptN, scryptR, scryptP, keySize)
	})
	return cachedKey, cachedErr
}

// EncryptText encrypts plaintext with AES-256-GCM and a fresh random IV.
// The result is a hex envelope: iv:tag:ciphertext.
func EncryptText(text string) (string, error) {
	key, err := derivedKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	// Seal appends the auth tag to the ciphertext
	sealed := gcm.Seal(nil, iv, []byte(text), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return fmt.Sprintf("%s:%s:%s", hex.EncodeToString(iv), hex.EncodeToString(tag), hex.EncodeToString(ciphertext)), nil
}

// DecryptText reverses EncryptText. Anything that is not a valid envelope
// (legacy plaintext, malformed hex, bad auth tag) is returned unchanged so
// data written before encryption was enabled keeps working.
func DecryptText(encrypted string) string {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 {
		return encrypted
	}

	key, err := derivedKey()
	if err != nil {
		return encrypted
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return encrypted
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return encrypted
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return encrypted
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return encrypted
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return encrypted
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return encrypted
	}

	return string(plaintext)
}

// IsEncrypted reports whether a stored value looks like an envelope.
// Diagnostic only; DecryptText never relies on it.
func IsEncrypted(text string) bool {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return false
	}
	if len(parts[0]) != ivSize*2 || len(parts[1]) != tagSize*2 {
		return false
	}
	if _, err := hex.DecodeString(parts[0]); err != nil {
		return false
	}
	if _, err := hex.DecodeString(parts[1]); err != nil {
		return false
	}
	return true
}
