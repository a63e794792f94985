package main

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/urfave/cli/v2"
)

func mintStateCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint-state",
		Usage: "Read or update the EFPListRegistry mint state",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Print the current mint state",
				Action: mintStateGetAction,
			},
			{
				Name:      "set",
				Usage:     "Set the mint state (registry owner only)",
				ArgsUsage: fmt.Sprintf("<%s>", "disabled|owner-only|public-mint|public-batch"),
				Action:    mintStateSetAction,
			},
		},
	}
}

func mintStateGetAction(c *cli.Context) error {
	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	cc, err := r.readCaller()
	if err != nil {
		return err
	}
	state, err := cc.GetMintState(c.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, state.String())
	return err
}

func mintStateSetAction(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.Exit("missing mint state argument", 1)
	}
	state, err := config.ParseMintState(c.Args().First())
	if err != nil {
		return err
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	cc, _, err := r.writeCaller(c)
	if err != nil {
		return err
	}

	receipt, err := cc.SetMintState(c.Context, state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "setMintState(%s) tx: %s\n", state, receipt.TxHash.Hex())
	return err
}

func mintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "Approve an operator for all lists and mint a new list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "slot",
				Usage: "List storage slot, decimal or 0x-prefixed hex. A random slot is used when omitted",
			},
			&cli.StringFlag{
				Name:  "operator",
				Usage: "Operator passed to setApprovalForAll, defaults to the signer",
			},
			&cli.BoolFlag{
				Name:  "skip-approval",
				Usage: "Do not call setApprovalForAll before minting",
			},
		},
		Action: mintAction,
	}
}

func mintAction(c *cli.Context) error {
	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	records, err := r.cfg.RequireContract(config.ContractName_ListRecords)
	if err != nil {
		return err
	}

	slot, err := mintSlot(c.String("slot"))
	if err != nil {
		return err
	}
	location, err := types.NewEVMListStorageLocation(uint64(r.cfg.ChainID), records, slot)
	if err != nil {
		return err
	}

	cc, txSigner, err := r.writeCaller(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if !c.Bool("skip-approval") {
		operator := txSigner.GetFromAddress()
		if s := c.String("operator"); s != "" {
			if operator, err = parseAddress(s); err != nil {
				return err
			}
		}
		receipt, err := cc.SetApprovalForAll(c.Context, operator, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "setApprovalForAll tx: %s\n", receipt.TxHash.Hex())
	}

	receipt, err := cc.Mint(c.Context, location)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "mint tx: %s\n", receipt.TxHash.Hex())
	fmt.Fprintf(w, "list storage location: %s\n", location.String())
	fmt.Fprintf(w, "slot: %s\n", slot.String())
	return nil
}

func mintSlot(s string) (*big.Int, error) {
	if s != "" {
		return parseBigInt(s)
	}
	limit := new(big.Int).Lsh(common.Big1, 256)
	slot, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate slot: %w", err)
	}
	return slot, nil
}
