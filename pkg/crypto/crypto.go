// Package crypto seals print data at rest. A key is derived per print from
// a host secret with HKDF, the template is deflated and then encrypted
// with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

const (
	saltSize = 32
	keySize  = 32
)

var (
	ErrEmptySecret  = errors.New("crypto: empty secret")
	ErrInvalidSalt  = errors.New("crypto: invalid salt length")
	ErrSizeMismatch = errors.New("crypto: decrypted print does not match its recorded size")
)

var (
	kdfInfo  = []byte("vkapi print key")
	aadLabel = []byte("print")
)

// SealedPrint is an encrypted print as stored on disk.
type SealedPrint struct {
	Salt       []byte `cbor:"1,keyasint"`
	Nonce      []byte `cbor:"2,keyasint"`
	Ciphertext []byte `cbor:"3,keyasint"`
	OrigSize   uint   `cbor:"4,keyasint"`
}

// DeriveKey expands secret and salt into an AES-256 key.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(salt) != saltSize {
		return nil, ErrInvalidSalt
	}

	k := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, kdfInfo), k); err != nil {
		return nil, fmt.Errorf("calculating print key using HKDF failed: %w", err)
	}
	return k, nil
}

func newGCM(secret, salt []byte) (cipher.AEAD, error) {
	k, err := DeriveKey(secret, salt)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// additionalData binds the ciphertext to the uncompressed size.
func additionalData(origSize uint) []byte {
	origSizeBin := make([]byte, 8)
	binary.LittleEndian.PutUint64(origSizeBin, uint64(origSize))
	return slices.Concat(aadLabel, origSizeBin)
}

func SealPrint(secret, data []byte) (*SealedPrint, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := compress(data)
	if err != nil {
		return nil, fmt.Errorf("crypto: compress: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	origSize := uint(len(data))
	return &SealedPrint{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, additionalData(origSize)),
		OrigSize:   origSize,
	}, nil
}

func OpenPrint(secret []byte, sealed *SealedPrint) ([]byte, error) {
	gcm, err := newGCM(secret, sealed.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, sealed.Nonce, sealed.Ciphertext, additionalData(sealed.OrigSize))
	if err != nil {
		return nil, err
	}

	data, err := decompress(plaintext)
	if err != nil {
		return nil, err
	}
	if uint(len(data)) != sealed.OrigSize {
		return nil, ErrSizeMismatch
	}
	return data, nil
}
