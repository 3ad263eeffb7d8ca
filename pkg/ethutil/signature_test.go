package ethutil

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestRecoverPersonalSign(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	signature, err := SignPersonal(key, "Sign in to WTF: nonce-1")
	require.NoError(t, err)

	recovered, err := RecoverPersonalSign("Sign in to WTF: nonce-1", signature)
	require.NoError(t, err)
	require.Equal(t, address, recovered)

	recovered, err = RecoverPersonalSign("Sign in to WTF: nonce-2", signature)
	require.NoError(t, err)
	require.NotEqual(t, address, recovered)

	_, err = RecoverPersonalSign("Sign in to WTF: nonce-1", "0x1234")
	require.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	addr, err := NormalizeAddress("0x9A4D496A08b2df2b1b115d2cDF9c0a5629384b07")
	require.NoError(t, err)
	require.Equal(t, strings.ToLower("0x9A4D496A08b2df2b1b115d2cDF9c0a5629384b07"), addr)

	_, err = NormalizeAddress("not-a-wallet")
	require.ErrorIs(t, err, ErrInvalidAddress)
}
