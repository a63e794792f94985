package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

var ErrTokenIDOutOfRange = errors.New("token id out of range [0, 2^256-1]")

// TokenID is an EFP list NFT id: an unsigned 256-bit integer that serializes
// as a decimal string in JSON and as 32 big-endian bytes on the wire.
type TokenID struct {
	v uint256.Int
}

func NewTokenID(v uint64) TokenID {
	var t TokenID
	t.v.SetUint64(v)
	return t
}

// TokenIDFromBig converts b, failing with ErrTokenIDOutOfRange when it is nil, negative or wider than 256 bits.
func TokenIDFromBig(b *big.Int) (TokenID, error) {
	if b == nil {
		return TokenID{}, fmt.Errorf("nil token id: %w", ErrTokenIDOutOfRange)
	}
	if b.Sign() < 0 {
		return TokenID{}, fmt.Errorf("negative token id %s: %w", b.String(), ErrTokenIDOutOfRange)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return TokenID{}, fmt.Errorf("token id %s exceeds 256 bits: %w", b.String(), ErrTokenIDOutOfRange)
	}
	return TokenID{v: *v}, nil
}

func TokenIDFromBytes32(b [32]byte) TokenID {
	var t TokenID
	t.v.SetBytes32(b[:])
	return t
}

// ParseTokenID accepts a decimal string or a 0x-prefixed hex string.
func ParseTokenID(s string) (TokenID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TokenID{}, fmt.Errorf("empty token id")
	}

	b := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = b.SetString(s[2:], 16)
	} else {
		_, ok = b.SetString(s, 10)
	}
	if !ok {
		return TokenID{}, fmt.Errorf("invalid token id %q", s)
	}
	return TokenIDFromBig(b)
}

func (t TokenID) Big() *big.Int {
	return t.v.ToBig()
}

func (t TokenID) Bytes32() [32]byte {
	return t.v.Bytes32()
}

func (t TokenID) IsZero() bool {
	return t.v.IsZero()
}

func (t TokenID) Cmp(other TokenID) int {
	return t.v.Cmp(&other.v)
}

func (t TokenID) String() string {
	return t.v.Dec()
}

func (t TokenID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts a JSON string (decimal or 0x hex) or a bare JSON number.
func (t *TokenID) UnmarshalJSON(data []byte) error {
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("token id must be a string or number: %w", err)
		}
		raw = n.String()
	}

	parsed, err := ParseTokenID(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TokenID) UnmarshalText(text []byte) error {
	parsed, err := ParseTokenID(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
