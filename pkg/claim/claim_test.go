package claim

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/pkg/accounts"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

const (
	testManager = "0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496"
	testSigner  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	tokenZeroMessage = "1900" + "454650" +
		"0000000000000000000000000000000000000000000000000000000000000000" +
		"6d616e61676572" +
		"7fa9385be102ac3eac297483dd6233d62b3e1496"
	tokenZeroDigest    = "0x6ef224f62f179c3802ea481e6a2df42aa5f8cc9a00944bf3c71eaa76b746ec88"
	tokenZeroSignature = "276e11588e9fb487eeab8bd4ce66075bbbd162f673dde0fde98947bae001b050" +
		"6c100c6d7e1ea1d47107f63c302564ac1a2746de0aa0894fe597738cd03c1578" + "1c"

	tokenOneDigest = "0xe19ad3a0e974c8970daa39c6bdcca957606bcf08613e16f6f61d9e1e9f3aabdd"
	tokenMaxDigest = "0x84cf580a2ad028124a30a128fd1cdec3f1defdf61b52874287c0da1cc0dc38bc"

	tokenZeroPersonalDigest = "0xd583bbcebeb81ef50f6783f7c92714615cf58102102d14c54856bdb14339ed92"
)

var maxTokenID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func testKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	account, err := accounts.DeriveAccount(accounts.TestMnemonic, 0)
	require.NoError(t, err)
	return account.PrivateKey
}

func managerBytes() []byte {
	return common.HexToAddress(testManager).Bytes()
}

func TestBuildManagerClaimMessage(t *testing.T) {
	t.Run("token zero vector", func(t *testing.T) {
		msg, err := BuildManagerClaimMessage(big.NewInt(0), managerBytes())
		require.NoError(t, err)
		assert.Equal(t, tokenZeroMessage, hex.EncodeToString(msg))
		assert.Len(t, msg, MessageLength)
	})

	t.Run("layout", func(t *testing.T) {
		tests := []struct {
			name    string
			tokenID *big.Int
		}{
			{"zero", big.NewInt(0)},
			{"one", big.NewInt(1)},
			{"uint64 max", new(big.Int).SetUint64(^uint64(0))},
			{"uint256 max", maxTokenID},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				msg, err := BuildManagerClaimMessage(tt.tokenID, managerBytes())
				require.NoError(t, err)
				require.Len(t, msg, MessageLength)

				assert.Equal(t, []byte{0x19, 0x00, 'E', 'F', 'P'}, msg[:5])
				assert.Equal(t, 0, new(big.Int).SetBytes(msg[5:37]).Cmp(tt.tokenID))
				assert.Equal(t, "manager", string(msg[37:44]))
				assert.Equal(t, managerBytes(), msg[44:])
			})
		}
	})

	t.Run("max token id fills the field", func(t *testing.T) {
		msg, err := BuildManagerClaimMessage(maxTokenID, managerBytes())
		require.NoError(t, err)
		for _, b := range msg[5:37] {
			require.Equal(t, byte(0xff), b)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := BuildManagerClaimMessage(big.NewInt(77), managerBytes())
		require.NoError(t, err)
		b, err := BuildManagerClaimMessage(big.NewInt(77), managerBytes())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("matches the typed builder", func(t *testing.T) {
		a, err := BuildManagerClaimMessage(big.NewInt(9), managerBytes())
		require.NoError(t, err)
		b := BuildManagerClaimMessageForTokenID(types.NewTokenID(9), common.HexToAddress(testManager))
		assert.Equal(t, a, b)
	})
}

func TestBuildManagerClaimMessage_Errors(t *testing.T) {
	t.Run("token id out of range", func(t *testing.T) {
		for name, id := range map[string]*big.Int{
			"nil":      nil,
			"negative": big.NewInt(-1),
			"2^256":    new(big.Int).Lsh(big.NewInt(1), 256),
		} {
			t.Run(name, func(t *testing.T) {
				_, err := BuildManagerClaimMessage(id, managerBytes())
				require.ErrorIs(t, err, ErrTokenIDOutOfRange)
			})
		}
	})

	t.Run("manager address length", func(t *testing.T) {
		for _, n := range []int{0, 1, 19, 21, 32} {
			_, err := BuildManagerClaimMessage(big.NewInt(1), make([]byte, n))
			require.ErrorIs(t, err, ErrInvalidManagerAddress, "length %d", n)
		}
	})
}

func TestDigest(t *testing.T) {
	tests := []struct {
		name    string
		tokenID *big.Int
		digest  string
	}{
		{"zero", big.NewInt(0), tokenZeroDigest},
		{"one", big.NewInt(1), tokenOneDigest},
		{"max", maxTokenID, tokenMaxDigest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := ManagerClaimDigest(tt.tokenID, managerBytes())
			require.NoError(t, err)
			assert.Equal(t, tt.digest, digest.Hex())

			msg, err := BuildManagerClaimMessage(tt.tokenID, managerBytes())
			require.NoError(t, err)
			hasher := sha3.NewLegacyKeccak256()
			hasher.Write(msg)
			assert.Equal(t, hasher.Sum(nil), digest.Bytes())
		})
	}

	t.Run("total over any length", func(t *testing.T) {
		assert.Equal(t, crypto.Keccak256Hash(nil), Digest(nil))
		assert.Equal(t, crypto.Keccak256Hash(make([]byte, 1000)), Digest(make([]byte, 1000)))
	})
}

func TestSignRawDigest(t *testing.T) {
	key := testKey(t)

	t.Run("known vector", func(t *testing.T) {
		digest := common.HexToHash(tokenZeroDigest)
		sig, err := SignRawDigest(digest.Bytes(), key)
		require.NoError(t, err)
		assert.Equal(t, tokenZeroSignature, hex.EncodeToString(sig))

		signer, err := RecoverSigner(digest.Bytes(), sig)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(testSigner), signer)
	})

	t.Run("recovery id is 27 or 28", func(t *testing.T) {
		for i := 0; i < 32; i++ {
			k, err := crypto.GenerateKey()
			require.NoError(t, err)
			digest := crypto.Keccak256([]byte{byte(i)})
			sig, err := SignRawDigest(digest, k)
			require.NoError(t, err)
			require.Len(t, sig, SignatureLength)
			require.Contains(t, []byte{27, 28}, sig[64])
		}
	})

	t.Run("digest length", func(t *testing.T) {
		for _, n := range []int{0, 31, 33, 64} {
			_, err := SignRawDigest(make([]byte, n), key)
			require.ErrorIs(t, err, ErrSigning, "length %d", n)
		}
	})

	t.Run("malformed keys", func(t *testing.T) {
		digest := common.HexToHash(tokenZeroDigest).Bytes()

		_, err := SignRawDigest(digest, nil)
		require.ErrorIs(t, err, ErrSigning)

		_, err = SignRawDigest(digest, &ecdsa.PrivateKey{})
		require.ErrorIs(t, err, ErrSigning)

		p256Key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		_, err = SignRawDigest(digest, p256Key)
		require.ErrorIs(t, err, ErrSigning)

		zeroScalar := &ecdsa.PrivateKey{PublicKey: ecdsa.PublicKey{Curve: crypto.S256()}, D: big.NewInt(0)}
		_, err = SignRawDigest(digest, zeroScalar)
		require.ErrorIs(t, err, ErrSigning)
	})
}

func TestSignPersonal(t *testing.T) {
	key := testKey(t)
	msg, err := BuildManagerClaimMessage(big.NewInt(0), managerBytes())
	require.NoError(t, err)

	assert.Equal(t, tokenZeroPersonalDigest, PersonalDigest(msg).Hex())

	sig, err := SignPersonal(msg, key)
	require.NoError(t, err)

	signer, err := RecoverPersonalSigner(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSigner), signer)

	t.Run("personal signatures do not verify as manager claims", func(t *testing.T) {
		ok, err := Verify(big.NewInt(0), managerBytes(), sig, common.HexToAddress(testSigner))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("raw and personal signatures differ", func(t *testing.T) {
		raw, err := SignRawDigest(Digest(msg).Bytes(), key)
		require.NoError(t, err)
		assert.NotEqual(t, raw, sig)
	})
}

func TestVerify(t *testing.T) {
	key := testKey(t)
	signer := common.HexToAddress(testSigner)

	t.Run("concrete scenario", func(t *testing.T) {
		digest, err := ManagerClaimDigest(big.NewInt(0), managerBytes())
		require.NoError(t, err)
		sig, err := SignRawDigest(digest.Bytes(), key)
		require.NoError(t, err)

		ok, err := Verify(big.NewInt(0), managerBytes(), sig, signer)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("round trip over token ids and keys", func(t *testing.T) {
		ids := []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(1 << 40), maxTokenID}
		for i := 0; i < 8; i++ {
			k, err := crypto.GenerateKey()
			require.NoError(t, err)
			addr := crypto.PubkeyToAddress(k.PublicKey)
			for _, id := range ids {
				digest, err := ManagerClaimDigest(id, managerBytes())
				require.NoError(t, err)
				sig, err := SignRawDigest(digest.Bytes(), k)
				require.NoError(t, err)

				ok, err := Verify(id, managerBytes(), sig, addr)
				require.NoError(t, err)
				require.True(t, ok, "token id %s", id)
			}
		}
	})

	t.Run("wrong expected signer is false, not an error", func(t *testing.T) {
		sig, err := hex.DecodeString(tokenZeroSignature)
		require.NoError(t, err)
		ok, err := Verify(big.NewInt(0), managerBytes(), sig, common.HexToAddress(testManager))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("input errors propagate", func(t *testing.T) {
		sig, err := hex.DecodeString(tokenZeroSignature)
		require.NoError(t, err)

		_, err = Verify(big.NewInt(-1), managerBytes(), sig, signer)
		require.ErrorIs(t, err, ErrTokenIDOutOfRange)

		_, err = Verify(big.NewInt(0), managerBytes()[:19], sig, signer)
		require.ErrorIs(t, err, ErrInvalidManagerAddress)
	})
}

func TestVerify_TamperSensitivity(t *testing.T) {
	key := testKey(t)
	signer := common.HexToAddress(testSigner)
	tokenID := big.NewInt(0x1234)

	digest, err := ManagerClaimDigest(tokenID, managerBytes())
	require.NoError(t, err)
	sig, err := SignRawDigest(digest.Bytes(), key)
	require.NoError(t, err)

	t.Run("manager bytes", func(t *testing.T) {
		for i := 0; i < common.AddressLength; i++ {
			tampered := managerBytes()
			tampered[i] ^= 0x01
			ok, err := Verify(tokenID, tampered, sig, signer)
			require.NoError(t, err)
			require.False(t, ok, "byte %d", i)
		}
	})

	t.Run("token id bytes", func(t *testing.T) {
		id, err := types.TokenIDFromBig(tokenID)
		require.NoError(t, err)
		for i := 0; i < 32; i++ {
			raw := id.Bytes32()
			raw[i] ^= 0x80
			ok, err := Verify(new(big.Int).SetBytes(raw[:]), managerBytes(), sig, signer)
			require.NoError(t, err)
			require.False(t, ok, "byte %d", i)
		}
	})
}

func TestRecoverSigner_InvalidSignatures(t *testing.T) {
	digest := common.HexToHash(tokenZeroDigest).Bytes()
	valid, err := hex.DecodeString(tokenZeroSignature)
	require.NoError(t, err)

	withV := func(v byte) []byte {
		sig := append([]byte{}, valid...)
		sig[64] = v
		return sig
	}
	highS := func() []byte {
		sig := append([]byte{}, valid...)
		s := new(big.Int).SetBytes(sig[32:64])
		s.Sub(secp256k1N, s)
		copy(sig[32:64], common.LeftPadBytes(s.Bytes(), 32))
		if sig[64] == 27 {
			sig[64] = 28
		} else {
			sig[64] = 27
		}
		return sig
	}
	zeroR := func() []byte {
		sig := append([]byte{}, valid...)
		copy(sig[:32], make([]byte, 32))
		return sig
	}
	zeroS := func() []byte {
		sig := append([]byte{}, valid...)
		copy(sig[32:64], make([]byte, 32))
		return sig
	}
	rAtN := func() []byte {
		sig := append([]byte{}, valid...)
		copy(sig[:32], common.LeftPadBytes(secp256k1N.Bytes(), 32))
		return sig
	}

	tests := []struct {
		name string
		sig  []byte
	}{
		{"empty", nil},
		{"64 bytes", valid[:64]},
		{"66 bytes", append(append([]byte{}, valid...), 0)},
		{"v = 0", withV(0)},
		{"v = 1", withV(1)},
		{"v = 29", withV(29)},
		{"high s", highS()},
		{"zero r", zeroR()},
		{"zero s", zeroS()},
		{"r = n", rAtN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RecoverSigner(digest, tt.sig)
			require.ErrorIs(t, err, ErrInvalidSignature)

			_, err = Verify(big.NewInt(0), managerBytes(), tt.sig, common.HexToAddress(testSigner))
			require.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	t.Run("digest length", func(t *testing.T) {
		_, err := RecoverSigner(digest[:31], valid)
		require.ErrorIs(t, err, ErrInvalidSignature)

		_, err = RecoverSigner(append(append([]byte{}, digest...), 0), valid)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestNormalizeRecoveryID(t *testing.T) {
	valid, err := hex.DecodeString(tokenZeroSignature)
	require.NoError(t, err)
	digest := common.HexToHash(tokenZeroDigest).Bytes()

	raw := append([]byte{}, valid...)
	raw[64] -= 27

	normalized, err := NormalizeRecoveryID(raw)
	require.NoError(t, err)
	assert.Equal(t, valid, normalized)
	assert.Equal(t, byte(valid[64]-27), raw[64], "input must not be modified")

	signer, err := RecoverSigner(digest, normalized)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSigner), signer)

	unchanged, err := NormalizeRecoveryID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, unchanged)

	bad := append([]byte{}, valid...)
	bad[64] = 35
	_, err = NormalizeRecoveryID(bad)
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NormalizeRecoveryID(valid[:10])
	require.ErrorIs(t, err, ErrInvalidSignature)
}

type lyingSigner struct {
	inner   IDigestSigner
	address common.Address
}

func (l *lyingSigner) SignDigest(ctx context.Context, digest []byte) ([]byte, error) {
	return l.inner.SignDigest(ctx, digest)
}

func (l *lyingSigner) Address() common.Address {
	return l.address
}

func TestManagerClaim(t *testing.T) {
	signer, err := NewPrivateKeySigner(testKey(t))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testSigner), signer.Address())

	t.Run("sign, serialize, verify", func(t *testing.T) {
		c := NewManagerClaim(types.NewTokenID(0), common.HexToAddress(testManager))
		assert.Equal(t, tokenZeroDigest, c.Digest.Hex())
		require.NoError(t, c.Sign(context.Background(), signer))
		assert.Equal(t, tokenZeroSignature, hex.EncodeToString(c.Signature))
		require.NotNil(t, c.Signer)
		assert.Equal(t, signer.Address(), *c.Signer)

		data, err := json.Marshal(c)
		require.NoError(t, err)

		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Equal(t, "0", fields["tokenId"])
		assert.Equal(t, "0x"+tokenZeroMessage, fields["message"])

		var decoded ManagerClaim
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.NoError(t, decoded.CheckConsistency())

		ok, err := decoded.Verify(signer.Address())
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = decoded.Verify(common.HexToAddress(testManager))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("verification ignores embedded copies", func(t *testing.T) {
		c := NewManagerClaim(types.NewTokenID(5), common.HexToAddress(testManager))
		require.NoError(t, c.Sign(context.Background(), signer))

		c.TokenID = types.NewTokenID(6)
		require.ErrorIs(t, c.CheckConsistency(), ErrInconsistentClaim)

		ok, err := c.Verify(signer.Address())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unsigned claim", func(t *testing.T) {
		c := NewManagerClaim(types.NewTokenID(1), common.HexToAddress(testManager))
		_, err := c.Verify(signer.Address())
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("signer address must match the signature", func(t *testing.T) {
		c := NewManagerClaim(types.NewTokenID(1), common.HexToAddress(testManager))
		err := c.Sign(context.Background(), &lyingSigner{inner: signer, address: common.HexToAddress(testManager)})
		require.ErrorIs(t, err, ErrSigning)
		assert.Empty(t, c.Signature)
	})

	t.Run("rejects unusable keys", func(t *testing.T) {
		_, err := NewPrivateKeySigner(nil)
		require.ErrorIs(t, err, ErrSigning)
	})
}

func TestVerify_Concurrent(t *testing.T) {
	sig, err := hex.DecodeString(tokenZeroSignature)
	require.NoError(t, err)
	signer := common.HexToAddress(testSigner)

	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := Verify(big.NewInt(0), managerBytes(), sig, signer)
			results[i] = err == nil && ok
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "goroutine %d", i)
	}
}
