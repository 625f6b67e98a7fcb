// Package mvmz transcodes RPG Maker MV/MZ encrypted media. Encrypted
// files carry a 16-byte proprietary header that is discarded, followed by
// the original file with its first 16 bytes XORed against a game-wide
// 128-bit key.
package mvmz

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// KeyLen is the size of the symmetric key and of the region it covers.
const KeyLen = 16

// pngPlaintext is the fixed 16-byte prefix of every PNG file: signature,
// IHDR chunk length, and IHDR tag. XORing it against the ciphertext of a
// known-PNG recovers the key without any configuration.
var pngPlaintext = [KeyLen]byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D,
	0x49, 0x48, 0x44, 0x52,
}

// KeyState owns the lazily resolved encryption key for one import. The
// orchestrator constructs it once and hands it to the transcoder; it is
// never shared across imports.
type KeyState struct {
	key      [KeyLen]byte
	resolved bool
}

// NewKeyState returns unresolved key state.
func NewKeyState() *KeyState {
	return &KeyState{}
}

// Key returns the resolved key, or ok=false when no source has yielded
// one yet.
func (k *KeyState) Key() ([KeyLen]byte, bool) {
	return k.key, k.resolved
}

// SetHex resolves the key from a 32-character hex string (caller
// override or the system config's encryptionKey field).
func (k *KeyState) SetHex(s string) error {
	decoded, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parse key hex: %w", err)
	}
	if len(decoded) != KeyLen {
		return fmt.Errorf("key must be %d bytes, got %d", KeyLen, len(decoded))
	}
	copy(k.key[:], decoded)
	k.resolved = true
	return nil
}

// ResolveFromSystemJSON reads the encryptionKey field of a System.json
// document. A missing or malformed field is not an error; the key simply
// stays unresolved.
func (k *KeyState) ResolveFromSystemJSON(data []byte) {
	if k.resolved || len(data) == 0 {
		return
	}
	var doc struct {
		EncryptionKey string `json:"encryptionKey"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	if doc.EncryptionKey == "" {
		return
	}
	_ = k.SetHex(doc.EncryptionKey)
}

// RecoverFromPNG derives the key from the body of an encrypted PNG (the
// bytes after the 16-byte proprietary header) by XOR against the known
// plaintext prefix.
func (k *KeyState) RecoverFromPNG(body []byte) bool {
	if k.resolved {
		return true
	}
	if len(body) < KeyLen {
		return false
	}
	for i := 0; i < KeyLen; i++ {
		k.key[i] = body[i] ^ pngPlaintext[i]
	}
	k.resolved = true
	return true
}
