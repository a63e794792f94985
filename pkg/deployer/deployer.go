package deployer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/transactionSigner"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"go.uber.org/zap"
)

// ManifestFileName is the file the deployer writes next to the forge output.
const ManifestFileName = "anvil-deployed-contracts.json"

// constructorDependencies maps constructor parameter names to the contract whose address
// fills them.
var constructorDependencies = map[string]string{
	"_registryAddress":        config.ContractName_ListRegistry,
	"_accountMetadataAddress": config.ContractName_AccountMetadata,
	"_listRecordsL1":          config.ContractName_ListRecords,
}

type Deployer struct {
	signer transactionSigner.ITransactionSigner
	logger *zap.Logger
}

func NewDeployer(signer transactionSigner.ITransactionSigner, logger *zap.Logger) *Deployer {
	return &Deployer{
		signer: signer,
		logger: logger,
	}
}

// DeployAll deploys artifacts one at a time in the given order, waiting for each receipt so
// later constructors can reference earlier addresses.
func (d *Deployer) DeployAll(ctx context.Context, artifacts []*Artifact) ([]types.DeployedContract, error) {
	deployed := make([]types.DeployedContract, 0, len(artifacts))
	addresses := make(map[string]common.Address, len(artifacts))

	for _, artifact := range artifacts {
		result, err := d.Deploy(ctx, artifact, addresses)
		if err != nil {
			return deployed, err
		}
		addresses[artifact.Name] = result.ContractAddress
		deployed = append(deployed, *result)
	}
	return deployed, nil
}

func (d *Deployer) Deploy(ctx context.Context, artifact *Artifact, deployed map[string]common.Address) (*types.DeployedContract, error) {
	args, err := constructorArgs(artifact, deployed)
	if err != nil {
		return nil, err
	}

	packed, err := artifact.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack constructor arguments for %s: %w", artifact.Name, err)
	}

	data := make([]byte, 0, len(artifact.Bytecode)+len(packed))
	data = append(data, artifact.Bytecode...)
	data = append(data, packed...)

	d.logger.Sugar().Infow("Deploying contract",
		"contract", artifact.Name,
		"from", d.signer.GetFromAddress().Hex(),
		"constructorArgs", len(args),
	)

	receipt, err := d.signer.SignAndSendTransaction(ctx, ethTypes.NewTx(&ethTypes.DynamicFeeTx{Data: data}))
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", artifact.Name, err)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("receipt for %s has no contract address", artifact.Name)
	}

	d.logger.Sugar().Infow("Deployed contract",
		"contract", artifact.Name,
		"address", receipt.ContractAddress.Hex(),
		"txHash", receipt.TxHash.Hex(),
	)

	return &types.DeployedContract{
		ContractName:    artifact.Name,
		TransactionHash: receipt.TxHash,
		ContractAddress: receipt.ContractAddress,
	}, nil
}

func constructorArgs(artifact *Artifact, deployed map[string]common.Address) ([]interface{}, error) {
	inputs := artifact.ABI.Constructor.Inputs
	args := make([]interface{}, 0, len(inputs))
	for _, input := range inputs {
		dependency, ok := constructorDependencies[input.Name]
		if !ok {
			return nil, fmt.Errorf("%s constructor parameter %s cannot be resolved", artifact.Name, input.Name)
		}
		address, ok := deployed[dependency]
		if !ok {
			return nil, fmt.Errorf("%s requires %s to be deployed first", artifact.Name, dependency)
		}
		args = append(args, address)
	}
	return args, nil
}

// WriteManifest writes the deployed contracts as indented JSON with mode 0644.
func WriteManifest(path string, deployed []types.DeployedContract) error {
	data, err := json.MarshalIndent(deployed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployment manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deployment manifest %s: %w", path, err)
	}
	return os.Chmod(path, 0o644)
}

// AddressesFromManifest maps deployed EFP contracts onto an address set usable as overrides.
func AddressesFromManifest(deployed []types.DeployedContract) *config.EFPContractAddresses {
	out := &config.EFPContractAddresses{}
	for _, c := range deployed {
		hex := c.ContractAddress.Hex()
		switch c.ContractName {
		case config.ContractName_AccountMetadata:
			out.AccountMetadata = hex
		case config.ContractName_ListRegistry:
			out.ListRegistry = hex
		case config.ContractName_ListMetadata:
			out.ListMetadata = hex
		case config.ContractName_ListRecords:
			out.ListRecords = hex
		case config.ContractName_ListMinter:
			out.ListMinter = hex
		}
	}
	return out
}
