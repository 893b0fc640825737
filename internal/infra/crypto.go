package infra

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"
)

// ── Card tokenization ─────────────────────────────────────────────────────────

// CardTokenizer derives an opaque, deterministic token from a card number.
// The derivation is one-way (SHA3-256 over pepper‖PAN); the PAN cannot be
// recovered from the token, and the same card always maps to the same token
// so repeat customers can be correlated without storing card data.
type CardTokenizer struct {
	pepper []byte
}

func NewCardTokenizer(pepper string) *CardTokenizer {
	return &CardTokenizer{pepper: []byte(pepper)}
}

func (t *CardTokenizer) Tokenize(cardNumber string) string {
	h := sha3.New256()
	h.Write(t.pepper)
	h.Write([]byte(cardNumber))
	return "tok_" + hex.EncodeToString(h.Sum(nil))
}

// ── Card metadata vault ───────────────────────────────────────────────────────

// CardMetadata is the non-sensitive display subset stored for receipts and
// dispute handling. The raw number and CVV never reach this struct.
type CardMetadata struct {
	MaskedNumber string `json:"masked_number"`
	Expiry       string `json:"expiry"`
	HolderName   string `json:"holder_name"`
}

// MetadataVault seals card display metadata with ChaCha20-Poly1305. Only the
// ciphertext and nonce are persisted; the key comes from the deployment's
// secrets service and never leaves process memory.
type MetadataVault struct {
	key []byte
}

func NewMetadataVault(hexKey string) (*MetadataVault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("vault: key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &MetadataVault{key: key}, nil
}

// Seal encrypts the metadata and returns ciphertext plus the random nonce.
func (v *MetadataVault) Seal(meta CardMetadata) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.New(v.key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	plaintext, err := json.Marshal(meta)
	if err != nil {
		return nil, nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open decrypts metadata sealed by Seal.
func (v *MetadataVault) Open(ciphertext, nonce []byte) (*CardMetadata, error) {
	aead, err := chacha20poly1305.New(v.key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("vault: decryption failed")
	}
	var meta CardMetadata
	if err := json.Unmarshal(plaintext, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ── Masking helpers ───────────────────────────────────────────────────────────

// MaskCardNumber keeps the last four digits: "**** **** **** 0366".
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "****"
	}
	return "**** **** **** " + cardNumber[len(cardNumber)-4:]
}

// MaskPhoneNumber keeps the first three and last three digits visible.
func MaskPhoneNumber(phone string) string {
	if len(phone) <= 6 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-3:]
}
