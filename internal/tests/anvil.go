package tests

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
)

type AnvilConfig struct {
	BlockTime  string `json:"blockTime"`
	PortNumber string `json:"portNumber"`
	ChainId    string `json:"chainId"`
	Mnemonic   string `json:"mnemonic"`
}

// DefaultAnvilConfig is an automining devnet on a port that does not clash with a
// locally running anvil on 8545.
func DefaultAnvilConfig() *AnvilConfig {
	return &AnvilConfig{
		PortNumber: "8546",
		ChainId:    "31337",
	}
}

func (c *AnvilConfig) RpcUrl() string {
	return fmt.Sprintf("http://localhost:%s", c.PortNumber)
}

// RequireAnvil skips the test in short mode or when anvil is not installed.
func RequireAnvil(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping anvil integration test in short mode")
	}
	if _, err := exec.LookPath("anvil"); err != nil {
		t.Skip("anvil not found on PATH")
	}
}

func StartAnvil(ctx context.Context, cfg *AnvilConfig) (*exec.Cmd, error) {
	args := []string{
		"--chain-id", cfg.ChainId,
		"--port", cfg.PortNumber,
	}
	if cfg.BlockTime != "" {
		args = append(args, "--block-time", cfg.BlockTime)
	}
	if cfg.Mnemonic != "" {
		args = append(args, "--mnemonic", cfg.Mnemonic)
	}
	fmt.Printf("Starting anvil with args: %v\n", args)
	cmd := exec.CommandContext(ctx, "anvil", args...)
	cmd.Stderr = os.Stderr

	if os.Getenv("JOIN_ANVIL_OUTPUT") == "true" {
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start anvil: %w", err)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`
	for i := 1; i < 10; i++ {
		res, err := http.Post(cfg.RpcUrl(), "application/json", strings.NewReader(body))
		if err == nil {
			_ = res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println("Anvil is up and running")
				return cmd, nil
			}
		}
		fmt.Printf("Anvil not ready yet, retrying... %d\n", i)
		time.Sleep(time.Duration(i) * 200 * time.Millisecond)
	}

	_ = KillAnvil(cmd)
	return nil, fmt.Errorf("anvil did not become ready on %s", cfg.RpcUrl())
}

func WaitForAnvil(
	anvilWg *sync.WaitGroup,
	ctx context.Context,
	t *testing.T,
	ethereumClient ethereum.Client,
	errorsChan chan error,
) {
	defer anvilWg.Done()

	for {
		select {
		case <-ctx.Done():
			t.Logf("Failed to reach anvil: %v", ctx.Err())
			errorsChan <- fmt.Errorf("failed to reach anvil: %w", ctx.Err())
			return
		case <-time.After(500 * time.Millisecond):
			block, err := ethereumClient.GetLatestBlock(ctx)
			if err != nil {
				t.Logf("Failed to get latest block, will retry: %v", err)
				continue
			}
			t.Logf("Anvil is up and running, latest block: %v", block)
			return
		}
	}
}

func KillAnvil(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return fmt.Errorf("anvil command is not running")
	}

	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill anvil process: %w", err)
	}
	_ = cmd.Wait()

	fmt.Println("Anvil process killed successfully")
	return nil
}
