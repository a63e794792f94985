package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
)

// EFPListRecords is a binding around the EFP list records contract. Lists are
// addressed by their storage slot nonce.
type EFPListRecords struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewEFPListRecords(address common.Address, backend bind.ContractBackend) (*EFPListRecords, error) {
	parsed, err := ABIByName(config.ContractName_ListRecords)
	if err != nil {
		return nil, err
	}
	return &EFPListRecords{
		address:  address,
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

func (r *EFPListRecords) Address() common.Address {
	return r.address
}

// GetListManager is a free data retrieval call binding the contract method 0x6f1fe79d.
//
// Solidity: function getListManager(uint256 nonce) view returns(address)
func (r *EFPListRecords) GetListManager(opts *bind.CallOpts, nonce *big.Int) (common.Address, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "getListManager", nonce)
	if err != nil {
		return *new(common.Address), err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetListOpCount is a free data retrieval call.
//
// Solidity: function getListOpCount(uint256 nonce) view returns(uint256)
func (r *EFPListRecords) GetListOpCount(opts *bind.CallOpts, nonce *big.Int) (*big.Int, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "getListOpCount", nonce)
	if err != nil {
		return *new(*big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ClaimListManager is a paid mutator transaction binding the contract method 0x6950320b.
//
// Solidity: function claimListManager(uint256 nonce) returns()
func (r *EFPListRecords) ClaimListManager(opts *bind.TransactOpts, nonce *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "claimListManager", nonce)
}

// ClaimListManagerForAddress is a paid mutator transaction binding the contract method 0xaed5dafd.
//
// Solidity: function claimListManagerForAddress(uint256 nonce, address manager) returns()
func (r *EFPListRecords) ClaimListManagerForAddress(opts *bind.TransactOpts, nonce *big.Int, manager common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "claimListManagerForAddress", nonce, manager)
}

// SetListManager is a paid mutator transaction binding the contract method 0x8214bd41.
//
// Solidity: function setListManager(uint256 nonce, address manager) returns()
func (r *EFPListRecords) SetListManager(opts *bind.TransactOpts, nonce *big.Int, manager common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "setListManager", nonce, manager)
}
