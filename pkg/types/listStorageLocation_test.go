package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ListStorageLocation(t *testing.T) {
	records := common.HexToAddress("0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9")

	t.Run("encode then decode", func(t *testing.T) {
		slot, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
		require.True(t, ok)

		lsl, err := NewEVMListStorageLocation(31337, records, slot)
		require.NoError(t, err)

		encoded := lsl.Bytes()
		require.Len(t, encoded, 86)
		assert.Equal(t, []byte{0x01, 0x01}, encoded[:2])

		decoded, err := DecodeListStorageLocation(encoded)
		require.NoError(t, err)
		assert.Equal(t, uint64(31337), decoded.ChainID.Uint64())
		assert.Equal(t, records, decoded.Contract)
		assert.Equal(t, 0, slot.Cmp(decoded.Slot))
		assert.Equal(t, lsl.String(), decoded.String())
	})

	t.Run("fixed layout", func(t *testing.T) {
		lsl, err := NewEVMListStorageLocation(1, records, big.NewInt(5))
		require.NoError(t, err)
		assert.Equal(t,
			"0x0101"+
				"0000000000000000000000000000000000000000000000000000000000000001"+
				"cf7ed3acca5a467e9e704c703e8d87f634fb0fc9"+
				"0000000000000000000000000000000000000000000000000000000000000005",
			lsl.String(),
		)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		valid, err := NewEVMListStorageLocation(1, records, big.NewInt(5))
		require.NoError(t, err)
		good := valid.Bytes()

		badVersion := append([]byte{}, good...)
		badVersion[0] = 2
		badType := append([]byte{}, good...)
		badType[1] = 9

		for name, input := range map[string][]byte{
			"empty":       nil,
			"one byte":    {0x01},
			"bad version": badVersion,
			"bad type":    badType,
			"truncated":   good[:85],
			"trailing":    append(append([]byte{}, good...), 0x00),
			"hex garbage": hexutil.MustDecode("0x0101"),
		} {
			t.Run(name, func(t *testing.T) {
				_, err := DecodeListStorageLocation(input)
				require.Error(t, err)
			})
		}
	})

	t.Run("rejects out of range slots", func(t *testing.T) {
		_, err := NewEVMListStorageLocation(1, records, big.NewInt(-1))
		require.Error(t, err)
		_, err = NewEVMListStorageLocation(1, records, new(big.Int).Lsh(big.NewInt(1), 256))
		require.Error(t, err)
		_, err = NewEVMListStorageLocation(1, records, nil)
		require.Error(t, err)
	})
}
