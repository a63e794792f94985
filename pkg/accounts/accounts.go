// Package accounts derives Ethereum accounts from BIP-39 mnemonics.
package accounts

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

const (
	// TestMnemonic is the well-known development mnemonic anvil and hardhat fund by default.
	TestMnemonic = "test test test test test test test test test test test junk"

	// DerivationPathFormat is the BIP-44 Ethereum path, indexed by account.
	DerivationPathFormat = "m/44'/60'/0'/0/%d"
)

type Account struct {
	Index      uint32
	Path       string
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

// DeriveAccount derives the account at m/44'/60'/0'/0/<index> of mnemonic.
func DeriveAccount(mnemonic string, index uint32) (*Account, error) {
	wallet, err := hdwallet.NewFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	path := fmt.Sprintf(DerivationPathFormat, index)
	derivationPath, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %s: %w", path, err)
	}

	account, err := wallet.Derive(derivationPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account %s: %w", path, err)
	}

	key, err := wallet.PrivateKey(account)
	if err != nil {
		return nil, fmt.Errorf("failed to export private key for %s: %w", path, err)
	}

	// re-parse so the key carries go-ethereum's secp256k1 curve rather than btcec's
	gethKey, err := crypto.ToECDSA(crypto.FromECDSA(key))
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key for %s: %w", path, err)
	}

	return &Account{
		Index:      index,
		Path:       path,
		Address:    account.Address,
		PrivateKey: gethKey,
	}, nil
}

// DeriveAccounts derives the first count accounts of mnemonic.
func DeriveAccounts(mnemonic string, count uint32) ([]*Account, error) {
	out := make([]*Account, 0, count)
	for i := uint32(0); i < count; i++ {
		account, err := DeriveAccount(mnemonic, i)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, nil
}
