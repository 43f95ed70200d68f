package domain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// AssetID is the canonical 32-byte on-chain identifier of a fungible asset.
// The string form is 0x-prefixed lowercase hex.
type AssetID [32]byte

func AssetIDFromHex(s string) (AssetID, error) {
	var id AssetID
	h := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(h) != 64 {
		return id, fmt.Errorf("invalid asset id %q: want 64 hex chars, got %d", s, len(h))
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return id, fmt.Errorf("invalid asset id %q: %w", s, err)
	}
	copy(id[:], raw)
	return id, nil
}

// MustAssetIDFromHex panics on malformed input. Intended for constants and tests.
func MustAssetIDFromHex(s string) AssetID {
	id, err := AssetIDFromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (a AssetID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AssetID) IsZero() bool {
	return a == AssetID{}
}

// Less reports whether a orders before b lexicographically. Used for
// canonical pool ordering.
func (a AssetID) Less(b AssetID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// MarshalText encodes the id as 0x-prefixed hex, so AssetID works as a JSON
// value and as a JSON map key.
func (a AssetID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AssetID) UnmarshalText(data []byte) error {
	id, err := AssetIDFromHex(string(data))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// AssetMetadata is immutable post-issuance, so callers may cache it for the
// lifetime of the process.
type AssetMetadata struct {
	AssetID  AssetID `json:"assetId"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
	Name     string  `json:"name"`
}

type TradeType uint8

const (
	// TradeExactInput fixes the sell amount; the engine computes the buy amount.
	TradeExactInput TradeType = iota
	// TradeExactOutput fixes the buy amount; the engine computes the sell amount.
	TradeExactOutput
)

func (t TradeType) String() string {
	switch t {
	case TradeExactInput:
		return "ExactInput"
	case TradeExactOutput:
		return "ExactOutput"
	default:
		return "UNKNOWN"
	}
}

func ParseTradeType(s string) (TradeType, error) {
	switch s {
	case "ExactInput":
		return TradeExactInput, nil
	case "ExactOutput":
		return TradeExactOutput, nil
	default:
		return 0, fmt.Errorf("invalid trade type %q: must be ExactInput or ExactOutput", s)
	}
}
