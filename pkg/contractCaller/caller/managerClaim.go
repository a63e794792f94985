package caller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
)

// VerifyManagerClaim checks c against the current owner of its token and returns that owner.
func (cc *ContractCaller) VerifyManagerClaim(ctx context.Context, c *claim.ManagerClaim) (bool, common.Address, error) {
	if c == nil {
		return false, common.Address{}, fmt.Errorf("claim is required")
	}

	owner, err := cc.OwnerOf(ctx, c.TokenID)
	if err != nil {
		return false, common.Address{}, err
	}

	ok, err := c.Verify(owner)
	if err != nil {
		return false, owner, err
	}
	return ok, owner, nil
}

// SubmitManagerClaim verifies c against the token owner and then records c.Manager as
// manager of the list slot. A nil nonce is resolved from the token's list storage location.
func (cc *ContractCaller) SubmitManagerClaim(ctx context.Context, c *claim.ManagerClaim, nonce *big.Int) (*ethereumTypes.Receipt, error) {
	ok, owner, err := cc.VerifyManagerClaim(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to verify manager claim: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("manager claim for token %s is not signed by its owner %s", c.TokenID, owner.Hex())
	}

	if nonce == nil {
		location, err := cc.GetListStorageLocation(ctx, c.TokenID)
		if err != nil {
			return nil, err
		}
		if location.Contract != cc.ListRecordsAddress() {
			return nil, fmt.Errorf("token %s stores its list in %s, not the configured list records %s",
				c.TokenID, location.Contract.Hex(), cc.ListRecordsAddress().Hex())
		}
		nonce = location.Slot
	}

	cc.logger.Sugar().Infow("Submitting verified manager claim",
		"tokenId", c.TokenID.String(),
		"owner", owner.Hex(),
		"manager", c.Manager.Hex(),
		"nonce", nonce.String(),
	)
	return cc.ClaimListManagerForAddress(ctx, nonce, c.Manager)
}
