package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "efp",
		Usage: "Ethereum Follow Protocol tooling",
		Description: `Tools for working with the EFP contracts.

This tool can:
- Build, sign, verify and submit list manager claims
- Read and update the list registry mint state and mint lists
- Deploy forge-built contracts to a local chain
- Watch EFP contract events into local or shared storage`,
		Version: "1.0.0",
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			addressCommand(),
			signMessageCommand(),
			claimCommand(),
			mintStateCommand(),
			mintCommand(),
			deployCommand(),
			watchCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "rpc-url",
			Aliases: []string{"rpc"},
			Usage:   "Ethereum RPC endpoint URL",
			Value:   "http://localhost:8545",
			EnvVars: []string{config.EnvEFPRPCURL},
		},
		&cli.Uint64Flag{
			Name:    "chain-id",
			Aliases: []string{"chain"},
			Usage:   fmt.Sprintf("Chain ID: %s", config.GetSupportedChainIDsString()),
			Value:   uint64(config.ChainId_EthereumAnvil),
			EnvVars: []string{config.EnvEFPChainID},
		},
		&cli.StringFlag{
			Name:    "private-key",
			Usage:   "Hex encoded secp256k1 private key used for signing",
			EnvVars: []string{config.EnvEFPPrivateKey},
		},
		&cli.StringFlag{
			Name:    "mnemonic",
			Usage:   "BIP-39 mnemonic used for signing",
			EnvVars: []string{config.EnvEFPMnemonic},
		},
		&cli.UintFlag{
			Name:    "account-index",
			Usage:   "Account index derived from --mnemonic",
			EnvVars: []string{config.EnvEFPAccountIndex},
		},
		&cli.StringFlag{
			Name:    "kms-key-id",
			Usage:   "AWS KMS key id (ECC_SECG_P256K1) used for signing",
			EnvVars: []string{config.EnvEFPKMSKeyID},
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region of --kms-key-id",
			EnvVars: []string{config.EnvEFPAWSRegion},
		},
		&cli.StringFlag{
			Name:    "account-metadata",
			Usage:   "EFPAccountMetadata address override",
			EnvVars: []string{config.EnvEFPAccountMetadataAddress},
		},
		&cli.StringFlag{
			Name:    "list-registry",
			Usage:   "EFPListRegistry address override",
			EnvVars: []string{config.EnvEFPListRegistryAddress},
		},
		&cli.StringFlag{
			Name:    "list-metadata",
			Usage:   "EFPListMetadata address override",
			EnvVars: []string{config.EnvEFPListMetadataAddress},
		},
		&cli.StringFlag{
			Name:    "list-records",
			Usage:   "EFPListRecords address override",
			EnvVars: []string{config.EnvEFPListRecordsAddress},
		},
		&cli.StringFlag{
			Name:    "list-minter",
			Usage:   "EFPListMinter address override",
			EnvVars: []string{config.EnvEFPListMinterAddress},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Enable verbose logging",
			EnvVars: []string{config.EnvEFPVerbose},
		},
	}
}
