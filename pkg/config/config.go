package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for efp tooling configuration
const (
	EnvEFPRPCURL          = "EFP_RPC_URL"
	EnvEFPChainID         = "EFP_CHAIN_ID"
	EnvEFPPrivateKey      = "EFP_PRIVATE_KEY"
	EnvEFPMnemonic        = "EFP_MNEMONIC"
	EnvEFPAccountIndex    = "EFP_ACCOUNT_INDEX"
	EnvEFPKMSKeyID        = "EFP_KMS_KEY_ID"
	EnvEFPAWSRegion       = "EFP_AWS_REGION"
	EnvEFPPersistenceType = "EFP_PERSISTENCE_TYPE"
	EnvEFPDataPath        = "EFP_DATA_PATH"
	EnvEFPRedisAddress    = "EFP_REDIS_ADDRESS"
	EnvEFPRedisPassword   = "EFP_REDIS_PASSWORD"
	EnvEFPRedisDB         = "EFP_REDIS_DB"
	EnvEFPVerbose         = "EFP_VERBOSE"

	EnvEFPAccountMetadataAddress = "EFP_ACCOUNT_METADATA_ADDRESS"
	EnvEFPListRegistryAddress    = "EFP_LIST_REGISTRY_ADDRESS"
	EnvEFPListMetadataAddress    = "EFP_LIST_METADATA_ADDRESS"
	EnvEFPListRecordsAddress     = "EFP_LIST_RECORDS_ADDRESS"
	EnvEFPListMinterAddress      = "EFP_LIST_MINTER_ADDRESS"
)

// MintState mirrors the EFPListRegistry MintState enum.
type MintState string

func (m MintState) String() string {
	return string(m)
}
func (m MintState) Uint8() (uint8, error) {
	return ConvertMintStateToSolidityEnum(m)
}

const (
	MintStateDisabled    MintState = "disabled"
	MintStateOwnerOnly   MintState = "owner-only"
	MintStatePublicMint  MintState = "public-mint"
	MintStatePublicBatch MintState = "public-batch"
)

func ConvertMintStateToSolidityEnum(state MintState) (uint8, error) {
	switch state {
	case MintStateDisabled:
		return 0, nil
	case MintStateOwnerOnly:
		return 1, nil
	case MintStatePublicMint:
		return 2, nil
	case MintStatePublicBatch:
		return 3, nil
	default:
		return 0, fmt.Errorf("unsupported mint state: %s", state)
	}
}

func ConvertSolidityEnumToMintState(enumValue uint8) (MintState, error) {
	switch enumValue {
	case 0:
		return MintStateDisabled, nil
	case 1:
		return MintStateOwnerOnly, nil
	case 2:
		return MintStatePublicMint, nil
	case 3:
		return MintStatePublicBatch, nil
	default:
		return "", fmt.Errorf("unsupported mint state enum value: %d", enumValue)
	}
}

// ParseMintState accepts a state name, optionally written as a flag ("--public-mint").
func ParseMintState(s string) (MintState, error) {
	state := MintState(strings.ToLower(strings.TrimLeft(strings.TrimSpace(s), "-")))
	if _, err := ConvertMintStateToSolidityEnum(state); err != nil {
		return "", fmt.Errorf("unknown mint state %q, expected one of %s", s, strings.Join(MintStateNames(), ", "))
	}
	return state, nil
}

func MintStateNames() []string {
	return []string{
		MintStateDisabled.String(),
		MintStateOwnerOnly.String(),
		MintStatePublicMint.String(),
		MintStatePublicBatch.String(),
	}
}

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_Optimism        ChainId = 10
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_OptimismSepolia ChainId = 11155420
	ChainId_EthereumAnvil   ChainId = 31337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_Optimism        ChainName = "optimism"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_OptimismSepolia ChainName = "op-sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_Optimism:        ChainName_Optimism,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_OptimismSepolia: ChainName_OptimismSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
}
var ChainNameToId = map[ChainName]ChainId{
	ChainName_EthereumMainnet: ChainId_EthereumMainnet,
	ChainName_Optimism:        ChainId_Optimism,
	ChainName_EthereumSepolia: ChainId_EthereumSepolia,
	ChainName_OptimismSepolia: ChainId_OptimismSepolia,
	ChainName_EthereumAnvil:   ChainId_EthereumAnvil,
}

// GetSupportedChainIDs returns all supported chain IDs
func GetSupportedChainIDs() []ChainId {
	return []ChainId{
		ChainId_EthereumMainnet,
		ChainId_Optimism,
		ChainId_EthereumSepolia,
		ChainId_OptimismSepolia,
		ChainId_EthereumAnvil,
	}
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	parts := make([]string, 0, len(ChainIdToName))
	for _, id := range GetSupportedChainIDs() {
		parts = append(parts, fmt.Sprintf("%d (%s)", id, ChainIdToName[id]))
	}
	return strings.Join(parts, ", ")
}

// IsEthereumL1 reports whether chainId is an Ethereum L1 network (mainnet, sepolia or anvil)
func IsEthereumL1(chainId ChainId) bool {
	switch chainId {
	case ChainId_EthereumMainnet, ChainId_EthereumSepolia, ChainId_EthereumAnvil:
		return true
	default:
		return false
	}
}

// Poll intervals used by the event watcher, roughly one block per chain
const (
	PollInterval_Mainnet = 12 * time.Second
	PollInterval_L2      = 2 * time.Second
	PollInterval_Anvil   = 1 * time.Second
)

// Confirmation depths used by the event watcher. Blocks closer to the head than this are
// not read until they are buried.
const (
	ConfirmationDepth_Mainnet = 12
	ConfirmationDepth_L2      = 30
	ConfirmationDepth_Anvil   = 0

	// MaxConfirmationDepth bounds the configured depth to the window a node serves
	// block hashes for.
	MaxConfirmationDepth = 256
)

// GetConfirmationDepthForChain returns the default event watcher confirmation depth for a chain
func GetConfirmationDepthForChain(chainId ChainId) uint64 {
	switch chainId {
	case ChainId_EthereumMainnet, ChainId_EthereumSepolia:
		return ConfirmationDepth_Mainnet
	case ChainId_Optimism, ChainId_OptimismSepolia:
		return ConfirmationDepth_L2
	case ChainId_EthereumAnvil:
		return ConfirmationDepth_Anvil
	default:
		return ConfirmationDepth_Mainnet
	}
}

// GetPollIntervalForChain returns the default event watcher poll interval for a chain
func GetPollIntervalForChain(chainId ChainId) time.Duration {
	switch chainId {
	case ChainId_EthereumMainnet, ChainId_EthereumSepolia:
		return PollInterval_Mainnet
	case ChainId_Optimism, ChainId_OptimismSepolia:
		return PollInterval_L2
	case ChainId_EthereumAnvil:
		return PollInterval_Anvil
	default:
		return PollInterval_Mainnet
	}
}

// Contract names as used in forge artifacts, the deployment manifest and decoded events
const (
	ContractName_AccountMetadata = "EFPAccountMetadata"
	ContractName_ListRegistry    = "EFPListRegistry"
	ContractName_ListMetadata    = "EFPListMetadata"
	ContractName_ListRecords     = "EFPListRecords"
	ContractName_ListMinter      = "EFPListMinter"
)

// ContractDeploymentOrder is the order EFP contracts are deployed in.
var ContractDeploymentOrder = []string{
	ContractName_AccountMetadata,
	ContractName_ListRegistry,
	ContractName_ListMetadata,
	ContractName_ListRecords,
	ContractName_ListMinter,
}

type EFPContractAddresses struct {
	AccountMetadata string `json:"accountMetadata" yaml:"accountMetadata"`
	ListRegistry    string `json:"listRegistry" yaml:"listRegistry"`
	ListMetadata    string `json:"listMetadata" yaml:"listMetadata"`
	ListRecords     string `json:"listRecords" yaml:"listRecords"`
	ListMinter      string `json:"listMinter" yaml:"listMinter"`
}

// ByName returns the contract address keyed by contract name, skipping unset entries.
func (a *EFPContractAddresses) ByName() map[string]common.Address {
	out := make(map[string]common.Address)
	for name, addr := range map[string]string{
		ContractName_AccountMetadata: a.AccountMetadata,
		ContractName_ListRegistry:    a.ListRegistry,
		ContractName_ListMetadata:    a.ListMetadata,
		ContractName_ListRecords:     a.ListRecords,
		ContractName_ListMinter:      a.ListMinter,
	} {
		if addr != "" {
			out[name] = common.HexToAddress(addr)
		}
	}
	return out
}

// WithOverrides returns a copy of a with every non-empty field of overrides applied.
func (a *EFPContractAddresses) WithOverrides(overrides *EFPContractAddresses) *EFPContractAddresses {
	out := *a
	if overrides == nil {
		return &out
	}
	if overrides.AccountMetadata != "" {
		out.AccountMetadata = overrides.AccountMetadata
	}
	if overrides.ListRegistry != "" {
		out.ListRegistry = overrides.ListRegistry
	}
	if overrides.ListMetadata != "" {
		out.ListMetadata = overrides.ListMetadata
	}
	if overrides.ListRecords != "" {
		out.ListRecords = overrides.ListRecords
	}
	if overrides.ListMinter != "" {
		out.ListMinter = overrides.ListMinter
	}
	return &out
}

func (a *EFPContractAddresses) Validate() error {
	var allErrors field.ErrorList
	for name, addr := range map[string]string{
		"accountMetadata": a.AccountMetadata,
		"listRegistry":    a.ListRegistry,
		"listMetadata":    a.ListMetadata,
		"listRecords":     a.ListRecords,
		"listMinter":      a.ListMinter,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			allErrors = append(allErrors, field.Invalid(field.NewPath(name), addr, "must be a hex address"))
		}
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

var (
	// deterministic addresses of the first five deployments from the default anvil account
	anvilContracts = &EFPContractAddresses{
		AccountMetadata: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ListRegistry:    "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		ListMetadata:    "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0",
		ListRecords:     "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9",
		ListMinter:      "0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9",
	}

	EFPContracts = map[ChainId]*EFPContractAddresses{
		ChainId_EthereumAnvil: anvilContracts,
	}
)

// GetEFPContractsForChainId returns the known contract addresses for a chain. Chains without
// a known deployment return an empty set that must be filled from flags.
func GetEFPContractsForChainId(chainId ChainId) *EFPContractAddresses {
	contracts, ok := EFPContracts[chainId]
	if !ok {
		return &EFPContractAddresses{}
	}
	out := *contracts
	return &out
}

// SignerConfig selects the key used for signing claims, messages and transactions.
// Exactly one of PrivateKey, Mnemonic or KMSKeyId must be set.
type SignerConfig struct {
	PrivateKey   string `json:"privateKey" yaml:"privateKey"`
	Mnemonic     string `json:"mnemonic" yaml:"mnemonic"`
	AccountIndex uint32 `json:"accountIndex" yaml:"accountIndex"`
	KMSKeyId     string `json:"kmsKeyId" yaml:"kmsKeyId"`
	AWSRegion    string `json:"awsRegion" yaml:"awsRegion"`
}

func (sc *SignerConfig) Validate() error {
	var allErrors field.ErrorList

	set := 0
	for _, v := range []string{sc.PrivateKey, sc.Mnemonic, sc.KMSKeyId} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		allErrors = append(allErrors, field.Required(field.NewPath("privateKey"), "one of privateKey, mnemonic or kmsKeyId is required"))
	}
	if set > 1 {
		allErrors = append(allErrors, field.Forbidden(field.NewPath("privateKey"), "only one of privateKey, mnemonic or kmsKeyId may be set"))
	}

	if sc.PrivateKey != "" {
		pk := strings.TrimPrefix(sc.PrivateKey, "0x")
		if len(pk) != 64 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("privateKey"), "<redacted>", fmt.Sprintf("must be 32 bytes (64 hex chars), got %d chars", len(pk))))
		}
	}
	if sc.Mnemonic != "" && len(strings.Fields(sc.Mnemonic))%3 != 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("mnemonic"), "<redacted>", "word count must be a multiple of 3"))
	}
	if sc.AccountIndex != 0 && sc.Mnemonic == "" {
		allErrors = append(allErrors, field.Forbidden(field.NewPath("accountIndex"), "accountIndex requires mnemonic"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

type PersistenceType string

const (
	PersistenceType_Memory PersistenceType = "memory"
	PersistenceType_Badger PersistenceType = "badger"
	PersistenceType_Redis  PersistenceType = "redis"
)

type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

type PersistenceConfig struct {
	Type     PersistenceType `json:"type" yaml:"type"`
	DataPath string          `json:"dataPath" yaml:"dataPath"`
	Redis    *RedisConfig    `json:"redis" yaml:"redis"`
}

func (pc *PersistenceConfig) Validate() error {
	var allErrors field.ErrorList
	switch pc.Type {
	case PersistenceType_Memory:
	case PersistenceType_Badger:
		if pc.DataPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceType_Redis:
		if pc.Redis == nil || pc.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redis", "address"), "redis address is required for redis persistence"))
		} else if pc.Redis.DB < 0 || pc.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("redis", "db"), pc.Redis.DB, "must be between 0-15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("type"), pc.Type,
			[]string{string(PersistenceType_Memory), string(PersistenceType_Badger), string(PersistenceType_Redis)}))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// WatcherConfig configures the contract event watcher
type WatcherConfig struct {
	PollInterval      time.Duration      `json:"pollInterval" yaml:"pollInterval"`
	StartBlock        uint64             `json:"startBlock" yaml:"startBlock"`
	MaxBlockRange     uint64             `json:"maxBlockRange" yaml:"maxBlockRange"`
	ConfirmationDepth uint64             `json:"confirmationDepth" yaml:"confirmationDepth"`
	RequestsPerSecond float64            `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	Contracts         []string           `json:"contracts" yaml:"contracts"`
	Persistence       *PersistenceConfig `json:"persistence" yaml:"persistence"`
}

const (
	DefaultMaxBlockRange     = 2000
	DefaultRequestsPerSecond = 10
)

func (wc *WatcherConfig) Validate() error {
	var allErrors field.ErrorList
	if wc.PollInterval <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("pollInterval"), wc.PollInterval.String(), "must be positive"))
	}
	if wc.MaxBlockRange == 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("maxBlockRange"), wc.MaxBlockRange, "must be positive"))
	}
	if wc.ConfirmationDepth > MaxConfirmationDepth {
		allErrors = append(allErrors, field.Invalid(field.NewPath("confirmationDepth"), wc.ConfirmationDepth, fmt.Sprintf("must not exceed %d", MaxConfirmationDepth)))
	}
	if wc.RequestsPerSecond <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("requestsPerSecond"), wc.RequestsPerSecond, "must be positive"))
	}
	known := make(map[string]bool, len(ContractDeploymentOrder))
	for _, name := range ContractDeploymentOrder {
		known[name] = true
	}
	for i, name := range wc.Contracts {
		if !known[name] {
			allErrors = append(allErrors, field.NotSupported(field.NewPath("contracts").Index(i), name, ContractDeploymentOrder))
		}
	}
	if wc.Persistence == nil {
		allErrors = append(allErrors, field.Required(field.NewPath("persistence"), "persistence is required"))
	} else if err := wc.Persistence.Validate(); err != nil {
		allErrors = append(allErrors, field.Invalid(field.NewPath("persistence"), wc.Persistence.Type, err.Error()))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// EFPToolConfig is the resolved configuration shared by efp commands
type EFPToolConfig struct {
	ChainID   ChainId   `json:"chain_id"`
	ChainName ChainName `json:"chain_name"`
	RpcUrl    string    `json:"rpc_url"`

	Contracts *EFPContractAddresses `json:"contracts,omitempty"`

	Debug bool `json:"debug"`
}

// Validate checks the chain and RPC settings and resolves ChainName and Contracts
func (c *EFPToolConfig) Validate() error {
	if c.RpcUrl == "" {
		return fmt.Errorf("rpc url cannot be empty")
	}

	chainName, exists := ChainIdToName[c.ChainID]
	if !exists {
		return fmt.Errorf("unsupported chain ID %d. Supported: %s", c.ChainID, GetSupportedChainIDsString())
	}
	c.ChainName = chainName

	c.Contracts = GetEFPContractsForChainId(c.ChainID).WithOverrides(c.Contracts)
	if err := c.Contracts.Validate(); err != nil {
		return fmt.Errorf("invalid contract addresses: %w", err)
	}
	return nil
}

// RequireContract returns the address of a configured contract or an error naming the missing flag
func (c *EFPToolConfig) RequireContract(name string) (common.Address, error) {
	if c.Contracts == nil {
		return common.Address{}, fmt.Errorf("no contract addresses configured")
	}
	addr, ok := c.Contracts.ByName()[name]
	if !ok {
		return common.Address{}, fmt.Errorf("no %s address configured for chain %d", name, c.ChainID)
	}
	return addr, nil
}
