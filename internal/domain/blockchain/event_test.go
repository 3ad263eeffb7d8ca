package blockchain

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/entity"
)

var (
	testContract = common.HexToAddress("0x00000000000000000000000000000000000C0FFE")
	testMinter   = common.HexToAddress("0x742d35Cc6635C0532925a3b8D82E8DB7dc2f7b90")
	testOperator = common.HexToAddress("0x00000000000000000000000000000000000000AA")
)

func addressTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func erc721MintLog(tokenID int64, from common.Address) ethtypes.Log {
	return ethtypes.Log{
		Address: testContract,
		Topics: []common.Hash{
			TransferTopic,
			addressTopic(from),
			addressTopic(testMinter),
			common.BigToHash(big.NewInt(tokenID)),
		},
		TxHash:      common.HexToHash("0x01"),
		Index:       uint(tokenID),
		BlockNumber: 100,
	}
}

func erc1155SingleLog(id, value int64) ethtypes.Log {
	return erc1155SingleLogBig(big.NewInt(id), big.NewInt(value))
}

func erc1155SingleLogBig(id, value *big.Int) ethtypes.Log {
	data, err := erc1155ABI.Events["TransferSingle"].Inputs.NonIndexed().Pack(id, value)
	if err != nil {
		panic(err)
	}

	return ethtypes.Log{
		Address: testContract,
		Topics: []common.Hash{
			TransferSingleTopic,
			addressTopic(testOperator),
			{},
			addressTopic(testMinter),
		},
		Data:        data,
		TxHash:      common.HexToHash("0x02"),
		BlockNumber: 101,
	}
}

func erc1155BatchLog(ids, values []*big.Int) ethtypes.Log {
	data, err := erc1155ABI.Events["TransferBatch"].Inputs.NonIndexed().Pack(ids, values)
	if err != nil {
		panic(err)
	}

	return ethtypes.Log{
		Address: testContract,
		Topics: []common.Hash{
			TransferBatchTopic,
			addressTopic(testOperator),
			{},
			addressTopic(testMinter),
		},
		Data:        data,
		TxHash:      common.HexToHash("0x03"),
		BlockNumber: 102,
	}
}

func TestParseMintLog_ERC721(t *testing.T) {
	event, err := ParseMintLog(erc721MintLog(7, common.Address{}))
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, entity.MintTransfer, event.EventType)
	require.Equal(t, "0x742d35cc6635c0532925a3b8d82e8db7dc2f7b90", event.Wallet)
	require.Equal(t, strings.ToLower(testContract.Hex()), event.Contract)
	require.Equal(t, "7", event.TokenID)
	require.Equal(t, int64(1), event.Amount)

	// A transfer between holders is not a mint.
	event, err = ParseMintLog(erc721MintLog(7, testOperator))
	require.NoError(t, err)
	require.Nil(t, event)
}

func TestParseMintLog_ERC20Transfer(t *testing.T) {
	log := erc721MintLog(1, common.Address{})
	log.Topics = log.Topics[:3]

	event, err := ParseMintLog(log)
	require.NoError(t, err)
	require.Nil(t, event)
}

func TestParseMintLog_ERC1155(t *testing.T) {
	event, err := ParseMintLog(erc1155SingleLog(3, 5))
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, entity.MintTransferSingle, event.EventType)
	require.Equal(t, "3", event.TokenID)
	require.Equal(t, int64(5), event.Amount)

	event, err = ParseMintLog(erc1155BatchLog(
		[]*big.Int{big.NewInt(1), big.NewInt(2)},
		[]*big.Int{big.NewInt(2), big.NewInt(3)},
	))
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, entity.MintTransferBatch, event.EventType)
	require.Equal(t, "1,2", event.TokenID)
	require.Equal(t, int64(5), event.Amount)
}

func TestParseMintLog_Malformed(t *testing.T) {
	log := erc1155SingleLog(3, 5)
	log.Data = []byte{0x01}

	_, err := ParseMintLog(log)
	require.Error(t, err)

	event, err := ParseMintLog(ethtypes.Log{Topics: []common.Hash{common.HexToHash("0xdead")}})
	require.NoError(t, err)
	require.Nil(t, event)
}

func TestParseMintLog_AmountOutOfRange(t *testing.T) {
	huge, ok := new(big.Int).SetString("18446744073709551615", 10)
	require.True(t, ok)

	_, err := ParseMintLog(erc1155SingleLogBig(big.NewInt(1), huge))
	require.Error(t, err)

	_, err = ParseMintLog(erc1155SingleLog(1, MaxMintAmount+1))
	require.Error(t, err)

	_, err = ParseMintLog(erc1155BatchLog(
		[]*big.Int{big.NewInt(1), big.NewInt(2)},
		[]*big.Int{big.NewInt(1), huge},
	))
	require.Error(t, err)

	// Each value fits but the sum does not.
	_, err = ParseMintLog(erc1155BatchLog(
		[]*big.Int{big.NewInt(1), big.NewInt(2)},
		[]*big.Int{big.NewInt(MaxMintAmount), big.NewInt(1)},
	))
	require.Error(t, err)

	event, err := ParseMintLog(erc1155SingleLog(1, MaxMintAmount))
	require.NoError(t, err)
	require.Equal(t, int64(MaxMintAmount), event.Amount)
}
