package payment

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/mcoot/rightsquest/internal/model"
)

// TransferSignature is the token method the payload calls
const TransferSignature = "transfer(address,uint256)"

// TransferPayloadLength is selector + padded address + padded amount
const TransferPayloadLength = 4 + 32 + 32

// TransferSelector is the first four bytes of Keccak-256(TransferSignature)
var TransferSelector = [4]byte{0xa9, 0x05, 0x9c, 0xbb}

// Selector computes the 4-byte function selector of a method signature
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], Keccak256([]byte(signature)))
	return sel
}

// EncodeTransfer builds the call data for transfer(to, amount). The output
// is always TransferPayloadLength bytes and depends only on its inputs.
func EncodeTransfer(to Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return nil, fmt.Errorf("%w: amount does not fit a uint256", model.ErrInvalidAmount)
	}

	payload := make([]byte, TransferPayloadLength)
	copy(payload[0:4], TransferSelector[:])
	copy(payload[4+32-AddressLength:36], to[:])
	amount.FillBytes(payload[36:68])
	return payload, nil
}

// EncodeTransferHex is EncodeTransfer rendered as 0x-prefixed hex
func EncodeTransferHex(to Address, amount *big.Int) (string, error) {
	payload, err := EncodeTransfer(to, amount)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(payload), nil
}
