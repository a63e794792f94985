package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// writeJSON prints v as indented JSON and, when path is set, also writes it there.
func writeJSON(c *cli.Context, v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if path != "" {
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
