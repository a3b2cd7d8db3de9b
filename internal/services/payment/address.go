package payment

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/mcoot/rightsquest/internal/model"
)

// AddressLength is the byte length of an account identifier
const AddressLength = 20

// Address is a 20-byte account identifier
type Address [AddressLength]byte

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidAddress reports whether s is 0x followed by exactly 40 hex digits.
// Letter case is not checked.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ParseAddress validates and decodes a hex account identifier
func ParseAddress(s string) (Address, error) {
	var a Address
	if !IsValidAddress(s) {
		return a, fmt.Errorf("%w: %q", model.ErrInvalidRecipient, s)
	}
	if _, err := hex.Decode(a[:], []byte(s[2:])); err != nil {
		return a, fmt.Errorf("%w: %v", model.ErrInvalidRecipient, err)
	}
	return a, nil
}

// Hex returns the lowercase 0x-prefixed form
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Checksum returns the EIP-55 mixed-case form
func (a Address) Checksum() string {
	lower := hex.EncodeToString(a[:])
	hash := Keccak256([]byte(lower))

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// String implements fmt.Stringer
func (a Address) String() string {
	return a.Checksum()
}

// IsZero reports whether the address is all zero bytes
func (a Address) IsZero() bool {
	return a == Address{}
}

// SameAddress compares two address strings ignoring letter case
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Keccak256 hashes the concatenation of data with legacy Keccak-256
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
