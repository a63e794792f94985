package watcher

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/contracts"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/pkg/errors"
)

// ErrUnknownEvent is returned for logs whose first topic matches no event in the contract ABI.
var ErrUnknownEvent = errors.New("unknown event")

// Decoder turns raw logs of one deployed EFP contract into DecodedEvents.
type Decoder struct {
	Contract string
	Address  common.Address
	abi      *abi.ABI
}

func NewDecoder(contract string, address common.Address) (*Decoder, error) {
	parsed, err := contracts.ABIByName(contract)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		Contract: contract,
		Address:  address,
		abi:      parsed,
	}, nil
}

func (d *Decoder) Decode(log ethTypes.Log) (*types.DecodedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, errors.Wrap(ErrUnknownEvent, "log has no topics")
	}

	event, err := d.abi.EventByID(log.Topics[0])
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownEvent, "%s topic %s", d.Contract, log.Topics[0].Hex())
	}

	values := make(map[string]interface{}, len(event.Inputs))
	if err := event.Inputs.NonIndexed().UnpackIntoMap(values, log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack %s.%s data: %w", d.Contract, event.Name, err)
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %s.%s topics: %w", d.Contract, event.Name, err)
	}

	args := make(map[string]string, len(values))
	for name, v := range values {
		args[name] = formatArg(v)
	}

	return &types.DecodedEvent{
		Contract:        d.Contract,
		Address:         log.Address,
		Event:           event.Name,
		BlockNumber:     log.BlockNumber,
		BlockHash:       log.BlockHash,
		TransactionHash: log.TxHash,
		LogIndex:        log.Index,
		Removed:         log.Removed,
		Args:            args,
	}, nil
}

func formatArg(v interface{}) string {
	switch val := v.(type) {
	case *big.Int:
		return val.String()
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case []byte:
		return hexutil.Encode(val)
	case [32]byte:
		return hexutil.Encode(val[:])
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
