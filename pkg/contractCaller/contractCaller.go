package contractCaller

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
)

type IContractCaller interface {
	// EFPListRegistry
	GetMintState(ctx context.Context) (config.MintState, error)

	SetMintState(ctx context.Context, state config.MintState) (*ethereumTypes.Receipt, error)

	OwnerOf(ctx context.Context, tokenID types.TokenID) (common.Address, error)

	TotalSupply(ctx context.Context) (*big.Int, error)

	GetListStorageLocation(ctx context.Context, tokenID types.TokenID) (*types.ListStorageLocation, error)

	Mint(ctx context.Context, location *types.ListStorageLocation) (*ethereumTypes.Receipt, error)

	SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) (*ethereumTypes.Receipt, error)

	// EFPListRecords
	GetListManager(ctx context.Context, nonce *big.Int) (common.Address, error)

	ClaimListManager(ctx context.Context, nonce *big.Int) (*ethereumTypes.Receipt, error)

	ClaimListManagerForAddress(ctx context.Context, nonce *big.Int, manager common.Address) (*ethereumTypes.Receipt, error)

	SetListManager(ctx context.Context, nonce *big.Int, manager common.Address) (*ethereumTypes.Receipt, error)

	// Manager claims
	VerifyManagerClaim(ctx context.Context, c *claim.ManagerClaim) (bool, common.Address, error)

	SubmitManagerClaim(ctx context.Context, c *claim.ManagerClaim, nonce *big.Int) (*ethereumTypes.Receipt, error)
}
