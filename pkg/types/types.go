package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// DecodedEvent is a contract log decoded against its ABI. Args holds every
// event input rendered as a string: integers in decimal, addresses
// checksummed, byte values 0x-hex.
type DecodedEvent struct {
	Contract        string            `json:"contract"`
	Address         common.Address    `json:"address"`
	Event           string            `json:"event"`
	BlockNumber     uint64            `json:"blockNumber"`
	BlockHash       common.Hash       `json:"blockHash"`
	TransactionHash common.Hash       `json:"transactionHash"`
	LogIndex        uint              `json:"logIndex"`
	Removed         bool              `json:"removed,omitempty"`
	Args            map[string]string `json:"args"`
}

// Key orders events by block then log index when compared lexically.
func (e *DecodedEvent) Key() string {
	return fmt.Sprintf("%020d:%010d", e.BlockNumber, e.LogIndex)
}

// DeployedContract is one entry of the deployment manifest.
type DeployedContract struct {
	ContractName    string         `json:"contractName"`
	TransactionHash common.Hash    `json:"transactionHash"`
	ContractAddress common.Address `json:"contractAddress"`
}
