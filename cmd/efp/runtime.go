package main

import (
	"fmt"

	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/ethereum/go-ethereum/ethclient"
	efpAws "github.com/ethereumfollowprotocol/efp-go/internal/aws"
	"github.com/ethereumfollowprotocol/efp-go/internal/keyGenerator"
	"github.com/ethereumfollowprotocol/efp-go/internal/keyGenerator/awsKms"
	"github.com/ethereumfollowprotocol/efp-go/internal/keyGenerator/localKeyGenerator"
	"github.com/ethereumfollowprotocol/efp-go/pkg/accounts"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/contractCaller/caller"
	"github.com/ethereumfollowprotocol/efp-go/pkg/logger"
	"github.com/ethereumfollowprotocol/efp-go/pkg/transactionSigner"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// runtime carries what every command resolves from the global flags.
type runtime struct {
	cfg    *config.EFPToolConfig
	logger *zap.Logger
}

func newRuntime(c *cli.Context) (*runtime, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg := &config.EFPToolConfig{
		ChainID: config.ChainId(c.Uint64("chain-id")),
		RpcUrl:  c.String("rpc-url"),
		Contracts: &config.EFPContractAddresses{
			AccountMetadata: c.String("account-metadata"),
			ListRegistry:    c.String("list-registry"),
			ListMetadata:    c.String("list-metadata"),
			ListRecords:     c.String("list-records"),
			ListMinter:      c.String("list-minter"),
		},
		Debug: c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &runtime{cfg: cfg, logger: l}, nil
}

func (r *runtime) ethClient() (*ethclient.Client, error) {
	client := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl:   r.cfg.RpcUrl,
		BlockType: ethereum.BlockType_Latest,
	}, r.logger)

	ethClient, err := client.GetEthereumContractCaller()
	if err != nil {
		return nil, fmt.Errorf("failed to get Ethereum contract caller: %w", err)
	}
	return ethClient, nil
}

// signerConfig reads the signer flags. With no signer flags on the local devnet the
// first test mnemonic account is used.
func (r *runtime) signerConfig(c *cli.Context) (*config.SignerConfig, error) {
	sc := &config.SignerConfig{
		PrivateKey:   c.String("private-key"),
		Mnemonic:     c.String("mnemonic"),
		AccountIndex: uint32(c.Uint("account-index")),
		KMSKeyId:     c.String("kms-key-id"),
		AWSRegion:    c.String("aws-region"),
	}
	if sc.PrivateKey == "" && sc.Mnemonic == "" && sc.KMSKeyId == "" && r.cfg.ChainID == config.ChainId_EthereumAnvil {
		r.logger.Sugar().Infow("No signer configured, using the devnet test mnemonic", "accountIndex", sc.AccountIndex)
		sc.Mnemonic = accounts.TestMnemonic
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signer configuration: %w", err)
	}
	return sc, nil
}

func (r *runtime) digestSigner(c *cli.Context) (*keyGenerator.DigestSigner, error) {
	sc, err := r.signerConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := c.Context

	if sc.KMSKeyId != "" {
		awsCfg, err := efpAws.LoadAWSConfig(ctx, sc.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if r.cfg.Debug {
			identity, err := efpAws.GetCallerIdentity(ctx, awsCfg)
			if err != nil {
				r.logger.Sugar().Warnw("Failed to resolve AWS caller identity", "error", err)
			} else {
				r.logger.Sugar().Debugw("Using AWS identity", "arn", aws.ToString(identity.Arn), "account", aws.ToString(identity.Account))
			}
		}
		generator := awsKms.NewAWSKMSKeyGenerator(awsCfg, awsCfg.Region, r.cfg.ChainName, r.logger)
		return keyGenerator.NewDigestSigner(ctx, generator, sc.KMSKeyId)
	}

	generator := localKeyGenerator.NewLocalKeyGenerator(r.logger)
	var key *keyGenerator.GeneratedECDSAKey
	if sc.PrivateKey != "" {
		key, err = generator.ImportPrivateKeyHex(sc.PrivateKey, "efp-cli", "")
	} else {
		key, err = generator.ImportMnemonic(sc.Mnemonic, sc.AccountIndex, "efp-cli", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	return keyGenerator.NewDigestSigner(ctx, generator, key.KeyId)
}

// readCaller builds a caller that can only read contract state.
func (r *runtime) readCaller() (*caller.ContractCaller, error) {
	client, err := r.ethClient()
	if err != nil {
		return nil, err
	}
	return caller.NewContractCaller(client, nil, r.cfg.Contracts, r.logger)
}

// writeCaller builds a caller that sends transactions from the configured signer.
func (r *runtime) writeCaller(c *cli.Context) (*caller.ContractCaller, transactionSigner.ITransactionSigner, error) {
	client, err := r.ethClient()
	if err != nil {
		return nil, nil, err
	}
	txSigner, err := r.transactionSigner(c, client)
	if err != nil {
		return nil, nil, err
	}
	cc, err := caller.NewContractCaller(client, txSigner, r.cfg.Contracts, r.logger)
	if err != nil {
		return nil, nil, err
	}
	return cc, txSigner, nil
}

func (r *runtime) transactionSigner(c *cli.Context, client *ethclient.Client) (*transactionSigner.DigestTransactionSigner, error) {
	signer, err := r.digestSigner(c)
	if err != nil {
		return nil, err
	}
	return transactionSigner.NewDigestTransactionSigner(c.Context, signer, client, r.logger)
}
