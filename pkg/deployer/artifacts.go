package deployer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
)

// Artifact is a compiled contract read from a forge output directory.
type Artifact struct {
	Name     string
	Path     string
	ABI      abi.ABI
	Bytecode []byte
}

type forgeArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode struct {
		Object string `json:"object"`
	} `json:"bytecode"`
}

// LoadArtifacts reads <outDir>/<Name>.sol/<Name>.json for every contract directory, skipping
// test and script directories and artifacts without creation bytecode (interfaces, abstract
// contracts). The result is in deployment order: EFP contracts first, the rest by name.
func LoadArtifacts(outDir string) ([]*Artifact, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact directory %s: %w", outDir, err)
	}

	var artifacts []*Artifact
	for _, entry := range entries {
		dir := entry.Name()
		if !entry.IsDir() || !strings.HasSuffix(dir, ".sol") {
			continue
		}
		if strings.HasSuffix(dir, ".t.sol") || strings.HasSuffix(dir, ".s.sol") {
			continue
		}

		name := strings.TrimSuffix(dir, ".sol")
		path := filepath.Join(outDir, dir, name+".json")
		artifact, err := loadArtifact(name, path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if len(artifact.Bytecode) == 0 {
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	sortForDeployment(artifacts)
	return artifacts, nil
}

func loadArtifact(name, path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fa forgeArtifact
	if err := json.Unmarshal(raw, &fa); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	parsed, err := abi.JSON(bytes.NewReader(fa.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI in %s: %w", path, err)
	}

	var bytecode []byte
	if fa.Bytecode.Object != "" && fa.Bytecode.Object != "0x" {
		object := fa.Bytecode.Object
		if !strings.HasPrefix(object, "0x") {
			object = "0x" + object
		}
		bytecode, err = hexutil.Decode(object)
		if err != nil {
			return nil, fmt.Errorf("invalid bytecode in %s: %w", path, err)
		}
	}

	return &Artifact{
		Name:     name,
		Path:     path,
		ABI:      parsed,
		Bytecode: bytecode,
	}, nil
}

func sortForDeployment(artifacts []*Artifact) {
	rank := make(map[string]int, len(config.ContractDeploymentOrder))
	for i, name := range config.ContractDeploymentOrder {
		rank[name] = i
	}
	sort.SliceStable(artifacts, func(i, j int) bool {
		ri, iKnown := rank[artifacts[i].Name]
		rj, jKnown := rank[artifacts[j].Name]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return artifacts[i].Name < artifacts[j].Name
		}
	})
}
