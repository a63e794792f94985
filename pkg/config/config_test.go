package config

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintStateConversions(t *testing.T) {
	tests := []struct {
		state MintState
		enum  uint8
	}{
		{MintStateDisabled, 0},
		{MintStateOwnerOnly, 1},
		{MintStatePublicMint, 2},
		{MintStatePublicBatch, 3},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			v, err := tt.state.Uint8()
			require.NoError(t, err)
			assert.Equal(t, tt.enum, v)

			back, err := ConvertSolidityEnumToMintState(tt.enum)
			require.NoError(t, err)
			assert.Equal(t, tt.state, back)
		})
	}

	_, err := ConvertSolidityEnumToMintState(4)
	require.Error(t, err)
	_, err = MintState("paused").Uint8()
	require.Error(t, err)
}

func TestParseMintState(t *testing.T) {
	for in, want := range map[string]MintState{
		"disabled":       MintStateDisabled,
		"--owner-only":   MintStateOwnerOnly,
		"Public-Mint":    MintStatePublicMint,
		" public-batch ": MintStatePublicBatch,
	} {
		got, err := ParseMintState(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMintState("public")
	require.Error(t, err)
}

func TestChainMaps(t *testing.T) {
	for _, id := range GetSupportedChainIDs() {
		name, ok := ChainIdToName[id]
		require.True(t, ok, "chain %d has no name", id)
		assert.Equal(t, id, ChainNameToId[name])
	}
	assert.Contains(t, GetSupportedChainIDsString(), "31337 (devnet)")
	assert.Equal(t, PollInterval_Anvil, GetPollIntervalForChain(ChainId_EthereumAnvil))
	assert.Equal(t, PollInterval_Mainnet, GetPollIntervalForChain(ChainId(999)))

	assert.Equal(t, uint64(ConfirmationDepth_Anvil), GetConfirmationDepthForChain(ChainId_EthereumAnvil))
	assert.Equal(t, uint64(ConfirmationDepth_L2), GetConfirmationDepthForChain(ChainId_Optimism))
	assert.Equal(t, uint64(ConfirmationDepth_Mainnet), GetConfirmationDepthForChain(ChainId_EthereumMainnet))
	assert.Equal(t, uint64(ConfirmationDepth_Mainnet), GetConfirmationDepthForChain(ChainId(999)))
}

func TestEFPContractAddresses(t *testing.T) {
	t.Run("anvil defaults", func(t *testing.T) {
		c := GetEFPContractsForChainId(ChainId_EthereumAnvil)
		require.NoError(t, c.Validate())
		byName := c.ByName()
		assert.Len(t, byName, 5)
		assert.Equal(t, common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"), byName[ContractName_ListRegistry])
	})

	t.Run("defaults are not shared", func(t *testing.T) {
		c := GetEFPContractsForChainId(ChainId_EthereumAnvil)
		c.ListRegistry = ""
		assert.NotEmpty(t, GetEFPContractsForChainId(ChainId_EthereumAnvil).ListRegistry)
	})

	t.Run("unknown chain is empty", func(t *testing.T) {
		assert.Empty(t, GetEFPContractsForChainId(ChainId_EthereumMainnet).ByName())
	})

	t.Run("overrides", func(t *testing.T) {
		c := GetEFPContractsForChainId(ChainId_EthereumAnvil).WithOverrides(&EFPContractAddresses{
			ListRecords: "0x0000000000000000000000000000000000000001",
		})
		assert.Equal(t, "0x0000000000000000000000000000000000000001", c.ListRecords)
		assert.Equal(t, anvilContracts.ListRegistry, c.ListRegistry)
	})

	t.Run("invalid address", func(t *testing.T) {
		c := &EFPContractAddresses{ListMinter: "0x1234"}
		require.Error(t, c.Validate())
	})
}

func TestSignerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SignerConfig
		wantErr bool
	}{
		{"private key", SignerConfig{PrivateKey: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"}, false},
		{"mnemonic", SignerConfig{Mnemonic: "test test test test test test test test test test test junk", AccountIndex: 2}, false},
		{"kms", SignerConfig{KMSKeyId: "arn:aws:kms:us-east-1:123:key/abc", AWSRegion: "us-east-1"}, false},
		{"nothing", SignerConfig{}, true},
		{"two sources", SignerConfig{PrivateKey: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", KMSKeyId: "k"}, true},
		{"short key", SignerConfig{PrivateKey: "0x1234"}, true},
		{"bad mnemonic", SignerConfig{Mnemonic: "test test"}, true},
		{"index without mnemonic", SignerConfig{KMSKeyId: "k", AccountIndex: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWatcherConfig_Validate(t *testing.T) {
	valid := func() *WatcherConfig {
		return &WatcherConfig{
			PollInterval:      time.Second,
			MaxBlockRange:     DefaultMaxBlockRange,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Contracts:         []string{ContractName_ListRegistry, ContractName_ListRecords},
			Persistence:       &PersistenceConfig{Type: PersistenceType_Memory},
		}
	}

	require.NoError(t, valid().Validate())

	atMax := valid()
	atMax.ConfirmationDepth = MaxConfirmationDepth
	require.NoError(t, atMax.Validate())

	tests := []struct {
		name   string
		mutate func(*WatcherConfig)
	}{
		{"confirmation depth too large", func(c *WatcherConfig) { c.ConfirmationDepth = MaxConfirmationDepth + 1 }},
		{"zero poll interval", func(c *WatcherConfig) { c.PollInterval = 0 }},
		{"zero block range", func(c *WatcherConfig) { c.MaxBlockRange = 0 }},
		{"zero rate", func(c *WatcherConfig) { c.RequestsPerSecond = 0 }},
		{"unknown contract", func(c *WatcherConfig) { c.Contracts = []string{"Nope"} }},
		{"no persistence", func(c *WatcherConfig) { c.Persistence = nil }},
		{"badger without path", func(c *WatcherConfig) { c.Persistence = &PersistenceConfig{Type: PersistenceType_Badger} }},
		{"redis without address", func(c *WatcherConfig) { c.Persistence = &PersistenceConfig{Type: PersistenceType_Redis} }},
		{"redis bad db", func(c *WatcherConfig) {
			c.Persistence = &PersistenceConfig{Type: PersistenceType_Redis, Redis: &RedisConfig{Address: "localhost:6379", DB: 16}}
		}},
		{"unknown persistence", func(c *WatcherConfig) { c.Persistence = &PersistenceConfig{Type: "sqlite"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestEFPToolConfig_Validate(t *testing.T) {
	t.Run("anvil resolves contracts", func(t *testing.T) {
		c := &EFPToolConfig{ChainID: ChainId_EthereumAnvil, RpcUrl: "http://127.0.0.1:8545"}
		require.NoError(t, c.Validate())
		assert.Equal(t, ChainName_EthereumAnvil, c.ChainName)

		addr, err := c.RequireContract(ContractName_ListMinter)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(anvilContracts.ListMinter), addr)
	})

	t.Run("mainnet needs explicit contracts", func(t *testing.T) {
		c := &EFPToolConfig{ChainID: ChainId_EthereumMainnet, RpcUrl: "https://rpc"}
		require.NoError(t, c.Validate())
		_, err := c.RequireContract(ContractName_ListRegistry)
		require.Error(t, err)

		c = &EFPToolConfig{
			ChainID:   ChainId_EthereumMainnet,
			RpcUrl:    "https://rpc",
			Contracts: &EFPContractAddresses{ListRegistry: "0x0000000000000000000000000000000000000abc"},
		}
		require.NoError(t, c.Validate())
		_, err = c.RequireContract(ContractName_ListRegistry)
		require.NoError(t, err)
	})

	t.Run("errors", func(t *testing.T) {
		require.Error(t, (&EFPToolConfig{ChainID: ChainId_EthereumAnvil}).Validate())
		require.Error(t, (&EFPToolConfig{ChainID: 5, RpcUrl: "http://x"}).Validate())
		require.Error(t, (&EFPToolConfig{
			ChainID:   ChainId_EthereumAnvil,
			RpcUrl:    "http://x",
			Contracts: &EFPContractAddresses{ListRecords: "nope"},
		}).Validate())
	})
}
