// Package contracts embeds the EFP contract ABIs and provides bindings for
// the calls the efp tooling makes.
package contracts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
)

//go:embed abi/*.json
var abiFS embed.FS

var abiFiles = map[string]string{
	config.ContractName_AccountMetadata: "abi/EFPAccountMetadata.json",
	config.ContractName_ListRegistry:    "abi/EFPListRegistry.json",
	config.ContractName_ListMetadata:    "abi/EFPListMetadata.json",
	config.ContractName_ListRecords:     "abi/EFPListRecords.json",
	config.ContractName_ListMinter:      "abi/EFPListMinter.json",
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*abi.ABI{}
)

// ABIByName returns the parsed ABI of an EFP contract. Results are cached and
// must not be modified.
func ABIByName(name string) (*abi.ABI, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if a, ok := parsed[name]; ok {
		return a, nil
	}

	path, ok := abiFiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown contract %q", name)
	}
	raw, err := abiFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI for %s: %w", name, err)
	}
	a, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
	}
	parsed[name] = &a
	return &a, nil
}

// Names returns the names of all embedded contract ABIs, sorted.
func Names() []string {
	names := make([]string, 0, len(abiFiles))
	for name := range abiFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
