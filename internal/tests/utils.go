package tests

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/contracts"
	"github.com/stretchr/testify/require"
)

func GetProjectRootPath() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	match := regexp.MustCompile(`\/efp-go([A-Za-z0-9_-]+)?\/?$`)

	startingPath := ""
	for iterations := 0; iterations <= 10; iterations++ {
		p, err := filepath.Abs(fmt.Sprintf("%s/%s", wd, startingPath))
		if err != nil {
			panic(err)
		}
		if match.MatchString(p) {
			return p
		}
		if _, err := os.Stat(filepath.Join(p, "go.mod")); err == nil {
			return p
		}
		startingPath = startingPath + "/.."
	}
	panic("Could not find project root path")
}

// ListManagerChangeEmitterBytecode returns creation code that emits
// ListManagerChange(nonce, manager) from its constructor and leaves no runtime code.
func ListManagerChangeEmitterBytecode(t *testing.T, nonce uint8, manager common.Address) []byte {
	t.Helper()
	parsed, err := contracts.ABIByName(config.ContractName_ListRecords)
	require.NoError(t, err)
	event, ok := parsed.Events["ListManagerChange"]
	require.True(t, ok)

	code := []byte{0x73} // PUSH20 manager
	code = append(code, manager.Bytes()...)
	code = append(code, 0x60, 0x00, 0x52) // PUSH1 0 MSTORE
	code = append(code, 0x60, nonce)      // PUSH1 nonce
	code = append(code, 0x7f)             // PUSH32 event id
	code = append(code, event.ID.Bytes()...)
	code = append(code, 0x60, 0x20, 0x60, 0x00) // size, offset
	code = append(code, 0xa2, 0x00)             // LOG2 STOP
	return code
}

// WriteForgeArtifact writes a minimal forge artifact for name under outDir.
func WriteForgeArtifact(t *testing.T, outDir, name string, bytecode []byte) {
	t.Helper()
	dir := filepath.Join(outDir, name+".sol")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := fmt.Sprintf(`{"abi":[],"bytecode":{"object":"0x%s"}}`, hex.EncodeToString(bytecode))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644))
}
