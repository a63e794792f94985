package main

import (
	"path/filepath"

	"github.com/ethereumfollowprotocol/efp-go/pkg/deployer"
	"github.com/urfave/cli/v2"
)

func deployCommand() *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "Deploy forge-built contracts and write a deployment manifest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Forge output directory containing <Name>.sol/<Name>.json artifacts",
				Value: "out",
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Manifest path, defaults to <out>/" + deployer.ManifestFileName,
			},
		},
		Action: deployAction,
	}
}

func deployAction(c *cli.Context) error {
	outDir := c.String("out")
	manifest := c.String("manifest")
	if manifest == "" {
		manifest = filepath.Join(outDir, deployer.ManifestFileName)
	}

	artifacts, err := deployer.LoadArtifacts(outDir)
	if err != nil {
		return err
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	client, err := r.ethClient()
	if err != nil {
		return err
	}
	txSigner, err := r.transactionSigner(c, client)
	if err != nil {
		return err
	}

	r.logger.Sugar().Infow("Deploying contracts", "count", len(artifacts), "out", outDir)

	deployed, err := deployer.NewDeployer(txSigner, r.logger).DeployAll(c.Context, artifacts)
	if err != nil {
		return err
	}
	if err := deployer.WriteManifest(manifest, deployed); err != nil {
		return err
	}
	return writeJSON(c, deployed, "")
}
