package main

import (
	"fmt"

	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
	"github.com/urfave/cli/v2"
)

func addressCommand() *cli.Command {
	return &cli.Command{
		Name:   "address",
		Usage:  "Print the address of the configured signer",
		Action: addressAction,
	}
}

func addressAction(c *cli.Context) error {
	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	signer, err := r.digestSigner(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, signer.Address().Hex())
	return err
}

func signMessageCommand() *cli.Command {
	return &cli.Command{
		Name:      "sign-message",
		Usage:     "Sign a message with the EIP-191 personal message prefix",
		ArgsUsage: "[message]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "message",
				Usage: "Message to sign, also accepted as the first argument",
				Value: "Hello, World!",
			},
		},
		Action: signMessageAction,
	}
}

func signMessageAction(c *cli.Context) error {
	message := c.String("message")
	if c.Args().Present() {
		message = c.Args().First()
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	signer, err := r.digestSigner(c)
	if err != nil {
		return err
	}

	digest := claim.PersonalDigest([]byte(message))
	signature, err := signer.SignDigest(c.Context, digest.Bytes())
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}
	recovered, err := claim.RecoverPersonalSigner([]byte(message), signature)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Message           : %s\n", message)
	fmt.Fprintf(w, "Digest            : %s\n", digest.Hex())
	fmt.Fprintf(w, "Signature         : 0x%x\n", signature)
	fmt.Fprintf(w, "Recovered Address : %s\n", recovered.Hex())
	fmt.Fprintf(w, "Expected Address  : %s\n", signer.Address().Hex())

	if recovered != signer.Address() {
		return fmt.Errorf("recovered address %s does not match signer %s", recovered.Hex(), signer.Address().Hex())
	}
	return nil
}
