package util

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const anvilKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestStringToECDSAPrivateKey(t *testing.T) {
	t.Run("with and without prefix", func(t *testing.T) {
		k1, err := StringToECDSAPrivateKey(anvilKey)
		require.NoError(t, err)
		k2, err := StringToECDSAPrivateKey("0x" + anvilKey)
		require.NoError(t, err)
		require.Equal(t, k1.D, k2.D)
		require.Equal(t,
			common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
			DeriveAddress(&k1.PublicKey),
		)
	})
	t.Run("rejects short keys", func(t *testing.T) {
		_, err := StringToECDSAPrivateKey("0x1234")
		require.Error(t, err)
	})
	t.Run("rejects non-hex", func(t *testing.T) {
		_, err := StringToECDSAPrivateKey("zz" + anvilKey[2:])
		require.Error(t, err)
	})
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496")
	require.NoError(t, err)
	require.Equal(t, "0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496", addr.Hex())

	_, err = ParseAddress("0x7FA9385b")
	require.Error(t, err)
}

func TestMapFilter(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(i int, _ uint64) int { return i * 2 })
	require.Equal(t, []int{2, 4, 6}, doubled)

	even := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	require.Equal(t, []int{2, 4}, even)

	require.Empty(t, Filter([]int{1}, func(int) bool { return false }))
}
