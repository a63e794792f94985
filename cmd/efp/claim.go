package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	tokenIDFlag = &cli.StringFlag{
		Name:     "token-id",
		Usage:    "List token id, decimal or 0x-prefixed hex",
		Required: true,
	}
	managerFlag = &cli.StringFlag{
		Name:     "manager",
		Usage:    "Address to be made list manager",
		Required: true,
	}
	claimFlag = &cli.StringFlag{
		Name:     "claim",
		Usage:    "Signed claim as a JSON file path, inline JSON, or - for stdin",
		Required: true,
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Also write the claim JSON to this file",
	}
)

func claimCommand() *cli.Command {
	return &cli.Command{
		Name:  "claim",
		Usage: "Build, sign, verify and submit list manager claims",
		Subcommands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Print the unsigned claim message and digest",
				Flags:  []cli.Flag{tokenIDFlag, managerFlag},
				Action: claimBuildAction,
			},
			{
				Name:   "sign",
				Usage:  "Sign a claim with the configured signer",
				Flags:  []cli.Flag{tokenIDFlag, managerFlag, outFlag},
				Action: claimSignAction,
			},
			{
				Name:  "verify",
				Usage: "Verify a signed claim against an expected signer or the list owner on chain",
				Flags: []cli.Flag{
					claimFlag,
					&cli.StringFlag{
						Name:  "expected-signer",
						Usage: "Address the claim must be signed by. When omitted the registry ownerOf(tokenId) is used",
					},
				},
				Action: claimVerifyAction,
			},
			{
				Name:  "submit",
				Usage: "Submit a signed claim to EFPListRecords with claimListManagerForAddress",
				Flags: []cli.Flag{
					claimFlag,
					&cli.StringFlag{
						Name:  "nonce",
						Usage: "List nonce to claim. When omitted it is read from the token's list storage location",
					},
				},
				Action: claimSubmitAction,
			},
		},
	}
}

func parseClaimTarget(c *cli.Context) (*claim.ManagerClaim, error) {
	tokenID, err := types.ParseTokenID(c.String("token-id"))
	if err != nil {
		return nil, err
	}
	manager, err := parseAddress(c.String("manager"))
	if err != nil {
		return nil, errors.Wrap(claim.ErrInvalidManagerAddress, err.Error())
	}
	return claim.NewManagerClaim(tokenID, manager), nil
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a 20 byte hex address", s)
	}
	return common.HexToAddress(s), nil
}

func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%q is not an unsigned integer", s)
	}
	return v, nil
}

// readClaim loads a claim from a file, stdin or inline JSON and checks the embedded message
// and digest agree with the token id and manager.
func readClaim(c *cli.Context, source string) (*claim.ManagerClaim, error) {
	var data []byte
	switch {
	case source == "-":
		raw, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read claim from stdin: %w", err)
		}
		data = raw
	case strings.HasPrefix(strings.TrimSpace(source), "{"):
		data = []byte(source)
	default:
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read claim file: %w", err)
		}
		data = raw
	}

	var mc claim.ManagerClaim
	if err := json.Unmarshal(data, &mc); err != nil {
		return nil, fmt.Errorf("failed to parse claim JSON: %w", err)
	}
	if err := mc.CheckConsistency(); err != nil {
		return nil, err
	}
	return &mc, nil
}

func claimBuildAction(c *cli.Context) error {
	mc, err := parseClaimTarget(c)
	if err != nil {
		return err
	}
	return writeJSON(c, mc, "")
}

func claimSignAction(c *cli.Context) error {
	mc, err := parseClaimTarget(c)
	if err != nil {
		return err
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	signer, err := r.digestSigner(c)
	if err != nil {
		return err
	}

	if err := mc.Sign(c.Context, signer); err != nil {
		return err
	}
	r.logger.Sugar().Infow("Signed manager claim",
		"tokenId", mc.TokenID.String(),
		"manager", mc.Manager.Hex(),
		"signer", signer.Address().Hex(),
	)
	return writeJSON(c, mc, c.String("out"))
}

type verifyResult struct {
	Valid          bool           `json:"valid"`
	ExpectedSigner common.Address `json:"expectedSigner"`
}

func claimVerifyAction(c *cli.Context) error {
	mc, err := readClaim(c, c.String("claim"))
	if err != nil {
		return err
	}

	var result verifyResult
	if expected := c.String("expected-signer"); expected != "" {
		address, err := parseAddress(expected)
		if err != nil {
			return err
		}
		valid, err := mc.Verify(address)
		if err != nil {
			return err
		}
		result = verifyResult{Valid: valid, ExpectedSigner: address}
	} else {
		r, err := newRuntime(c)
		if err != nil {
			return err
		}
		cc, err := r.readCaller()
		if err != nil {
			return err
		}
		valid, owner, err := cc.VerifyManagerClaim(c.Context, mc)
		if err != nil {
			return err
		}
		result = verifyResult{Valid: valid, ExpectedSigner: owner}
	}

	if err := writeJSON(c, result, ""); err != nil {
		return err
	}
	if !result.Valid {
		return cli.Exit("manager claim is not signed by "+result.ExpectedSigner.Hex(), 1)
	}
	return nil
}

func claimSubmitAction(c *cli.Context) error {
	mc, err := readClaim(c, c.String("claim"))
	if err != nil {
		return err
	}

	var nonce *big.Int
	if s := c.String("nonce"); s != "" {
		if nonce, err = parseBigInt(s); err != nil {
			return err
		}
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	cc, _, err := r.writeCaller(c)
	if err != nil {
		return err
	}

	receipt, err := cc.SubmitManagerClaim(c.Context, mc, nonce)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "claimListManagerForAddress tx: %s (block %s)\n", receipt.TxHash.Hex(), receipt.BlockNumber)
	return err
}
