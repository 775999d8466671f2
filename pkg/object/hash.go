package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
)

const (
	// HashSize is the length of a raw SHA-1 digest in bytes.
	HashSize = sha1.Size
	// HashHexSize is the length of a hex-encoded Hash.
	HashHexSize = 2 * HashSize
)

// HashBytes computes the raw SHA-1 of data and returns it as a lowercase
// hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the envelope "type len\0content".
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(envelopeHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

func envelopeHeader(objType ObjectType, n int) []byte {
	header := make([]byte, 0, len(objType)+12)
	header = append(header, objType...)
	header = append(header, ' ')
	header = strconv.AppendInt(header, int64(n), 10)
	return append(header, 0)
}

// ParseHash validates s as a full lowercase hex identifier.
func ParseHash(s string) (Hash, error) {
	if !IsHash(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return Hash(s), nil
}

// IsHash reports whether s is a full 40-character lowercase hex identifier.
func IsHash(s string) bool {
	return len(s) == HashHexSize && isLowerHex(s)
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Raw returns the 20-byte binary form of h.
func (h Hash) Raw() ([HashSize]byte, error) {
	var out [HashSize]byte
	if !IsHash(string(h)) {
		return out, fmt.Errorf("%w: %q", ErrInvalidHash, string(h))
	}
	if _, err := hex.Decode(out[:], []byte(h)); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return out, nil
}

// HashFromRaw converts a 20-byte binary digest into a Hash.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != HashSize {
		return "", fmt.Errorf("%w: raw digest has %d bytes", ErrInvalidHash, len(raw))
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Short returns the first 7 characters of h, or h itself if shorter.
func (h Hash) Short() string {
	if len(h) <= 7 {
		return string(h)
	}
	return string(h[:7])
}
