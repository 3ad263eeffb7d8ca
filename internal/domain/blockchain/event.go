package blockchain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/wtfpad/backend/internal/entity"
)

var (
	TransferTopic       = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	TransferSingleTopic = crypto.Keccak256Hash([]byte("TransferSingle(address,address,address,uint256,uint256)"))
	TransferBatchTopic  = crypto.Keccak256Hash([]byte("TransferBatch(address,address,address,uint256[],uint256[])"))
)

const erc1155ABIJSON = `[
	{"anonymous":false,"inputs":[
		{"indexed":true,"name":"operator","type":"address"},
		{"indexed":true,"name":"from","type":"address"},
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"id","type":"uint256"},
		{"indexed":false,"name":"value","type":"uint256"}],"name":"TransferSingle","type":"event"},
	{"anonymous":false,"inputs":[
		{"indexed":true,"name":"operator","type":"address"},
		{"indexed":true,"name":"from","type":"address"},
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"ids","type":"uint256[]"},
		{"indexed":false,"name":"values","type":"uint256[]"}],"name":"TransferBatch","type":"event"}
]`

var erc1155ABI = mustParseABI(erc1155ABIJSON)

// MaxMintAmount bounds the tokens credited by one mint.
const MaxMintAmount = 10_000

func mintAmount(v *big.Int) (int64, error) {
	if v.Sign() < 0 || !v.IsInt64() || v.Int64() > MaxMintAmount {
		return 0, fmt.Errorf("mint amount %s out of range", v)
	}

	return v.Int64(), nil
}

// ParseMintLog turns a log of a tracked contract into a mint event. It returns
// nil for transfers that are not mints (non-zero sender) and for logs of other
// events.
func ParseMintLog(log ethtypes.Log) (*entity.MintEvent, error) {
	if len(log.Topics) == 0 {
		return nil, nil
	}

	event := &entity.MintEvent{
		TxHash:      log.TxHash.Hex(),
		LogIndex:    log.Index,
		Contract:    strings.ToLower(log.Address.Hex()),
		BlockNumber: log.BlockNumber,
	}

	switch log.Topics[0] {
	case TransferTopic:
		// ERC20 transfers share the signature but do not index the value.
		if len(log.Topics) != 4 || !isZeroTopic(log.Topics[1]) {
			return nil, nil
		}

		event.EventType = entity.MintTransfer
		event.Wallet = topicToWallet(log.Topics[2])
		event.TokenID = log.Topics[3].Big().String()
		event.Amount = 1

	case TransferSingleTopic:
		if len(log.Topics) != 4 || !isZeroTopic(log.Topics[2]) {
			return nil, nil
		}

		values, err := erc1155ABI.Unpack("TransferSingle", log.Data)
		if err != nil {
			return nil, fmt.Errorf("cannot decode TransferSingle: %w", err)
		}

		id, _ := values[0].(*big.Int)
		value, _ := values[1].(*big.Int)
		if id == nil || value == nil {
			return nil, fmt.Errorf("unexpected TransferSingle data")
		}

		event.EventType = entity.MintTransferSingle
		event.Wallet = topicToWallet(log.Topics[3])
		event.TokenID = id.String()
		event.Amount, err = mintAmount(value)
		if err != nil {
			return nil, err
		}

	case TransferBatchTopic:
		if len(log.Topics) != 4 || !isZeroTopic(log.Topics[2]) {
			return nil, nil
		}

		values, err := erc1155ABI.Unpack("TransferBatch", log.Data)
		if err != nil {
			return nil, fmt.Errorf("cannot decode TransferBatch: %w", err)
		}

		ids, _ := values[0].([]*big.Int)
		amounts, _ := values[1].([]*big.Int)
		if len(ids) != len(amounts) {
			return nil, fmt.Errorf("mismatched TransferBatch ids and values")
		}

		tokenIDs := make([]string, 0, len(ids))
		total := int64(0)
		for i := range ids {
			amount, err := mintAmount(amounts[i])
			if err != nil {
				return nil, err
			}

			tokenIDs = append(tokenIDs, ids[i].String())
			total += amount
		}

		if total > MaxMintAmount {
			return nil, fmt.Errorf("mint amount %d out of range", total)
		}

		event.EventType = entity.MintTransferBatch
		event.Wallet = topicToWallet(log.Topics[3])
		event.TokenID = strings.Join(tokenIDs, ",")
		event.Amount = total

	default:
		return nil, nil
	}

	if event.Amount <= 0 {
		return nil, nil
	}

	return event, nil
}

func isZeroTopic(topic common.Hash) bool {
	return topic == (common.Hash{})
}

func topicToWallet(topic common.Hash) string {
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
}
