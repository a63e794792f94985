package awsKms

import (
	"context"
	"crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/internal/keyGenerator"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// kmsAPI is the subset of the KMS client the key generator uses.
type kmsAPI interface {
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

type AWSKMSKeyGenerator struct {
	logger    *zap.Logger
	kmsClient kmsAPI
	awsRegion string
	chainName config.ChainName
}

func NewAWSKMSKeyGenerator(awsCfg aws.Config, awsRegion string, chainName config.ChainName, logger *zap.Logger) *AWSKMSKeyGenerator {
	return newAWSKMSKeyGenerator(kms.NewFromConfig(awsCfg), awsRegion, chainName, logger)
}

func newAWSKMSKeyGenerator(client kmsAPI, awsRegion string, chainName config.ChainName, logger *zap.Logger) *AWSKMSKeyGenerator {
	return &AWSKMSKeyGenerator{
		logger:    logger,
		kmsClient: client,
		awsRegion: awsRegion,
		chainName: chainName,
	}
}

func (a *AWSKMSKeyGenerator) SignMessage(ctx context.Context, keyId string, digest []byte) ([]byte, error) {
	return a.getSignatureFromKms(ctx, keyId, digest)
}

func (a *AWSKMSKeyGenerator) GenerateECDSAKey(ctx context.Context, keyName string, aliasName string) (*keyGenerator.GeneratedECDSAKey, error) {
	keyRes, err := a.createEthereumSigningKey(ctx, keyName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create ECDSA key %s in region %s", keyName, a.awsRegion)
	}
	keyId := aws.ToString(keyRes.KeyMetadata.KeyId)

	if aliasName != "" {
		if err := a.createKeyAlias(ctx, keyId, aliasName); err != nil {
			return nil, errors.Wrapf(err, "failed to create alias %s for key %s in region %s", aliasName, keyId, a.awsRegion)
		}
	}

	return a.GetECDSAKeyById(ctx, keyId)
}

func (a *AWSKMSKeyGenerator) GetECDSAKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedECDSAKey, error) {
	pubKey, err := a.getPublicKey(ctx, keyId)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s in region %s", keyId, a.awsRegion)
	}

	return &keyGenerator.GeneratedECDSAKey{
		PublicKey: pubKey,
		Address:   crypto.PubkeyToAddress(*pubKey),
		KeyId:     keyId,
	}, nil
}

// createEthereumSigningKey creates a secp256k1 sign/verify key
func (a *AWSKMSKeyGenerator) createEthereumSigningKey(ctx context.Context, keyName string) (*kms.CreateKeyOutput, error) {
	input := &kms.CreateKeyInput{
		KeyUsage:    types.KeyUsageTypeSignVerify,
		KeySpec:     types.KeySpecEccSecgP256k1,
		Description: aws.String(fmt.Sprintf("EFP manager claim signing key - %s", keyName)),
		Tags: []types.Tag{
			{TagKey: aws.String("Name"), TagValue: aws.String(keyName)},
			{TagKey: aws.String("Environment"), TagValue: aws.String(string(a.chainName))},
			{TagKey: aws.String("Purpose"), TagValue: aws.String("efp-signing-key")},
			{TagKey: aws.String("Curve"), TagValue: aws.String("secp256k1")},
		},
	}

	result, err := a.kmsClient.CreateKey(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS key: %w", err)
	}
	if result.KeyMetadata == nil || result.KeyMetadata.KeyId == nil {
		return nil, fmt.Errorf("KMS returned no key id")
	}
	return result, nil
}

func (a *AWSKMSKeyGenerator) createKeyAlias(ctx context.Context, keyId, aliasName string) error {
	input := &kms.CreateAliasInput{
		AliasName:   aws.String(fmt.Sprintf("alias/%s", aliasName)),
		TargetKeyId: aws.String(keyId),
	}

	if _, err := a.kmsClient.CreateAlias(ctx, input); err != nil {
		return fmt.Errorf("failed to create key alias: %w", err)
	}

	a.logger.Sugar().Infow("Created KMS key alias",
		"alias", fmt.Sprintf("alias/%s", aliasName),
		"keyId", keyId,
	)
	return nil
}

func (a *AWSKMSKeyGenerator) getPublicKey(ctx context.Context, keyId string) (*ecdsa.PublicKey, error) {
	result, err := a.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyId),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}
	return parseECDSAPublicKey(result.PublicKey)
}

func (a *AWSKMSKeyGenerator) getSignatureFromKms(ctx context.Context, keyId string, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be exactly 32 bytes, got %d", len(digest))
	}

	expectedPubKey, err := a.getPublicKey(ctx, keyId)
	if err != nil {
		return nil, err
	}

	signOutput, err := a.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(keyId),
		Message:          digest,
		SigningAlgorithm: types.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      types.MessageTypeDigest,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "KMS sign failed for key %s", keyId)
	}

	sig, err := ethereumSignatureFromDER(digest, signOutput.Signature, expectedPubKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert KMS signature for key %s", keyId)
	}
	a.logger.Sugar().Debugw("Signed digest with KMS key", "keyId", keyId)
	return sig, nil
}

// DER structures returned by KMS
type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

// parseECDSAPublicKey parses the DER SubjectPublicKeyInfo KMS returns
func parseECDSAPublicKey(derBytes []byte) (*ecdsa.PublicKey, error) {
	var asn1pubk asn1EcPublicKey
	if _, err := asn1.Unmarshal(derBytes, &asn1pubk); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}
	return crypto.UnmarshalPubkey(asn1pubk.PublicKey.Bytes)
}

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// ethereumSignatureFromDER turns a DER (r, s) signature into r ‖ s ‖ v with
// low s and v in {27, 28}. v is found by recovering against expected.
func ethereumSignatureFromDER(digest []byte, der []byte, expected *ecdsa.PublicKey) ([]byte, error) {
	var sigAsn1 asn1EcSig
	if _, err := asn1.Unmarshal(der, &sigAsn1); err != nil {
		return nil, fmt.Errorf("failed to parse DER signature: %w", err)
	}

	r := new(big.Int).SetBytes(sigAsn1.R.Bytes)
	s := new(big.Int).SetBytes(sigAsn1.S.Bytes)
	if s.Cmp(secp256k1HalfN) > 0 {
		s = new(big.Int).Sub(secp256k1N, s)
	}

	signature := make([]byte, crypto.SignatureLength)
	r.FillBytes(signature[0:32])
	s.FillBytes(signature[32:64])

	expectedAddress := crypto.PubkeyToAddress(*expected)
	for recoveryId := byte(0); recoveryId < 2; recoveryId++ {
		signature[crypto.RecoveryIDOffset] = recoveryId
		recovered, err := crypto.SigToPub(digest, signature)
		if err != nil {
			continue
		}
		if crypto.PubkeyToAddress(*recovered) == expectedAddress {
			signature[crypto.RecoveryIDOffset] += 27
			return signature, nil
		}
	}
	return nil, fmt.Errorf("could not determine recovery id: signature does not recover to %s", expectedAddress)
}
