package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
)

// EFPListRegistry is a binding around the EFP list NFT registry.
type EFPListRegistry struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewEFPListRegistry(address common.Address, backend bind.ContractBackend) (*EFPListRegistry, error) {
	parsed, err := ABIByName(config.ContractName_ListRegistry)
	if err != nil {
		return nil, err
	}
	return &EFPListRegistry{
		address:  address,
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

func (r *EFPListRegistry) Address() common.Address {
	return r.address
}

// GetMintState is a free data retrieval call binding the contract method 0x774a8835.
//
// Solidity: function getMintState() view returns(uint8)
func (r *EFPListRegistry) GetMintState(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "getMintState")
	if err != nil {
		return *new(uint8), err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// SetMintState is a paid mutator transaction binding the contract method 0xf11cb0af.
//
// Solidity: function setMintState(uint8 _mintState) returns()
func (r *EFPListRegistry) SetMintState(opts *bind.TransactOpts, mintState uint8) (*types.Transaction, error) {
	return r.contract.Transact(opts, "setMintState", mintState)
}

// OwnerOf is a free data retrieval call binding the contract method 0x6352211e.
//
// Solidity: function ownerOf(uint256 tokenId) view returns(address)
func (r *EFPListRegistry) OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "ownerOf", tokenId)
	if err != nil {
		return *new(common.Address), err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// TotalSupply is a free data retrieval call binding the contract method 0x18160ddd.
//
// Solidity: function totalSupply() view returns(uint256)
func (r *EFPListRegistry) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "totalSupply")
	if err != nil {
		return *new(*big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetListStorageLocation is a free data retrieval call.
//
// Solidity: function getListStorageLocation(uint256 tokenId) view returns(bytes)
func (r *EFPListRegistry) GetListStorageLocation(opts *bind.CallOpts, tokenId *big.Int) ([]byte, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "getListStorageLocation", tokenId)
	if err != nil {
		return *new([]byte), err
	}
	return *abi.ConvertType(out[0], new([]byte)).(*[]byte), nil
}

// GetMaxMintBatchSize is a free data retrieval call.
//
// Solidity: function getMaxMintBatchSize() view returns(uint256)
func (r *EFPListRegistry) GetMaxMintBatchSize(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "getMaxMintBatchSize")
	if err != nil {
		return *new(*big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Owner is a free data retrieval call.
//
// Solidity: function owner() view returns(address)
func (r *EFPListRegistry) Owner(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "owner")
	if err != nil {
		return *new(common.Address), err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// Mint is a paid mutator transaction binding the contract method 0x7ba0e2e7.
//
// Solidity: function mint(bytes listStorageLocation) payable returns()
func (r *EFPListRegistry) Mint(opts *bind.TransactOpts, listStorageLocation []byte) (*types.Transaction, error) {
	return r.contract.Transact(opts, "mint", listStorageLocation)
}

// SetApprovalForAll is a paid mutator transaction binding the contract method 0xa22cb465.
//
// Solidity: function setApprovalForAll(address operator, bool approved) returns()
func (r *EFPListRegistry) SetApprovalForAll(opts *bind.TransactOpts, operator common.Address, approved bool) (*types.Transaction, error) {
	return r.contract.Transact(opts, "setApprovalForAll", operator, approved)
}
