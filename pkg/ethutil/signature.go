package ethutil

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

// NormalizeAddress validates a hex address and returns its lowercase form,
// which is how wallets are keyed everywhere in storage.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}

	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// RecoverPersonalSign returns the address that produced an EIP-191
// personal_sign signature over message.
func RecoverPersonalSign(message, signatureHex string) (common.Address, error) {
	signature, err := hexutil.Decode(signatureHex)
	if err != nil {
		return common.Address{}, err
	}

	if len(signature) != crypto.SignatureLength {
		return common.Address{}, errors.New("invalid signature length")
	}

	// Transform yellow paper V from 27/28 to 0/1.
	if signature[crypto.RecoveryIDOffset] == 27 || signature[crypto.RecoveryIDOffset] == 28 {
		signature[crypto.RecoveryIDOffset] -= 27
	}

	recovered, err := crypto.SigToPub(accounts.TextHash([]byte(message)), signature)
	if err != nil {
		return common.Address{}, err
	}

	return crypto.PubkeyToAddress(*recovered), nil
}

// SignPersonal is the wallet side of RecoverPersonalSign.
func SignPersonal(key *ecdsa.PrivateKey, message string) (string, error) {
	signature, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", err
	}

	signature[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(signature), nil
}
