// SPDX-License-Identifier: LGPL-3.0-or-later

// Package encryption implements Encrypt/Decrypt (spec.md §4.I): identity-
// based encryption under the network's subnet public key, bound to an
// access-control-condition identity parameter so a ciphertext can only
// be opened by nodes willing to sign that exact identity.
//
// The scheme is Boneh-Franklin IBE over BLS12-381: the subnet public key
// is the master public key subnetPubKey = s*G2Generator; a node's BLS
// signature share over the identity parameter IS its share of the
// identity private key s*Qid, so CombineBLS (already built for §4.E)
// doubles as the private-key-share combiner here. This is a scoped
// simplification of the production scheme (no Fujisaki-Okamoto CCA
// hardening), recorded in DESIGN.md.
package encryption

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cloudflare/circl/ecc/bls12381"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/sage-x-project/lit-coordinator/combine"
	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

// identityHashToG1DST is the domain-separation tag for hashing identity
// parameters to G1, distinguishing this use from BLS signature hashing.
const identityHashToG1DST = "LIT-COORDINATOR-IBE-G1-"

// IdentityParameter builds the identity string an encryption/decryption
// call is bound to: "lit-accesscontrolcondition://<hashOfConditions>/<hashOfPrivateData>",
// spec.md §6. Both hashes are lowercase-hex SHA-256 digests.
func IdentityParameter(conditions []byte, data []byte) string {
	hc := sha256.Sum256(conditions)
	hd := sha256.Sum256(data)
	return IdentityParameterFromHashes(hex.EncodeToString(hc[:]), hex.EncodeToString(hd[:]))
}

// IdentityParameterFromHashes builds the identity string from
// already-computed hex digests, for the decrypt path where only
// DataToEncryptHash (not the original plaintext) is available.
func IdentityParameterFromHashes(conditionsHashHex, dataHashHex string) string {
	return fmt.Sprintf("lit-accesscontrolcondition://%s/%s", conditionsHashHex, dataHashHex)
}

// Ciphertext is the output of Encrypt: the ephemeral G2 point plus the
// symmetrically-sealed payload.
type Ciphertext struct {
	Ephemeral []byte // compressed G2 point r*G2Generator
	Sealed    []byte // nonce || chacha20poly1305 sealed data
}

// EncryptParams are the inputs to Encrypt — spec.md §4.I.
type EncryptParams struct {
	DataToEncrypt []byte
	Conditions    []byte // canonical-JSON-encoded conditions (any of the four condition kinds)
	SubnetPubKey  []byte // compressed G2 point, s*G2Generator
}

// EncryptResult is Encrypt's return value.
type EncryptResult struct {
	Ciphertext        *Ciphertext
	DataToEncryptHash string
}

// Encrypt implements spec.md §4.I's Encrypt steps 2-6.
func Encrypt(p EncryptParams) (result *EncryptResult, err error) {
	timer := prometheus.NewTimer(metrics.CryptoOperationDuration.WithLabelValues("ibeEncrypt", "bls12381"))
	defer timer.ObserveDuration()
	metrics.CryptoOperations.WithLabelValues("ibeEncrypt", "bls12381").Inc()
	defer func() {
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("ibeEncrypt").Inc()
		}
	}()

	if len(p.SubnetPubKey) == 0 {
		return nil, literr.New(literr.LitNodeClientNotReady, "encryption: subnetPubKey unknown")
	}

	idParam := IdentityParameter(p.Conditions, p.DataToEncrypt)

	var ppub bls12381.G2
	if err := ppub.SetBytes(p.SubnetPubKey); err != nil {
		return nil, fmt.Errorf("encryption: invalid subnetPubKey: %w", err)
	}

	var qid bls12381.G1
	qid.Hash([]byte(idParam), []byte(identityHashToG1DST))

	var r bls12381.Scalar
	if err := r.Random(rand.Reader); err != nil {
		return nil, fmt.Errorf("encryption: random scalar: %w", err)
	}

	// U = r*G2Generator: paired against the combined identity key (G1)
	// at decrypt time as e(s*Qid, r*G2Generator) = e(Qid, Ppub)^r, which
	// must equal the mask computed here, e(Qid, Ppub)^r.
	var ephemeral bls12381.G2
	ephemeral.ScalarMult(&r, bls12381.G2Generator())

	gid := bls12381.Pair(&qid, &ppub)
	var gidR bls12381.Gt
	gidR.Exp(gid, &r)

	key := sha256.Sum256(gidR.Bytes())

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("encryption: init aead: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("encryption: generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, p.DataToEncrypt, nil)

	dataHash := sha256.Sum256(p.DataToEncrypt)

	return &EncryptResult{
		Ciphertext: &Ciphertext{
			Ephemeral: ephemeral.BytesCompressed(),
			Sealed:    append(nonce, sealed...),
		},
		DataToEncryptHash: hex.EncodeToString(dataHash[:]),
	}, nil
}

// DecryptParams are the inputs to Decrypt — spec.md §4.I.
type DecryptParams struct {
	Ciphertext        *Ciphertext
	DataToEncryptHash string
	Conditions        []byte
	Chain             string
	SessionSigs       sessionsigs.SessionSigsMap
	MinNodeCount      int
}

// DecryptionShare is one node's BLS signature share over the identity
// parameter, i.e. its fragment of the identity private key s*Qid.
type DecryptionShare struct {
	SignatureShare string
	ShareIndex     int
	DataSigned     string
}

// Decrypt runs verifyAndDecryptWithSignatureShares (spec.md §4.I step 4):
// combines the nodes' decryption shares into the identity private key,
// pairs it with the ciphertext's ephemeral point, and opens the sealed
// payload.
func Decrypt(p DecryptParams, shares []DecryptionShare) (plaintext []byte, err error) {
	timer := prometheus.NewTimer(metrics.CryptoOperationDuration.WithLabelValues("ibeDecrypt", "bls12381"))
	defer timer.ObserveDuration()
	metrics.CryptoOperations.WithLabelValues("ibeDecrypt", "bls12381").Inc()
	defer func() {
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("ibeDecrypt").Inc()
		}
	}()

	if len(p.SessionSigs) == 0 {
		return nil, literr.New(literr.InvalidArgumentException, "encryption: authSig required per node")
	}

	blsShares := make([]combine.BLSShare, 0, len(shares))
	for _, s := range shares {
		blsShares = append(blsShares, combine.BLSShare{
			SignatureShare: s.SignatureShare,
			ShareIndex:     s.ShareIndex,
			CurveType:      "BLS",
			DataSigned:     s.DataSigned,
		})
	}

	dID, err := combine.CombineBLS(blsShares, p.MinNodeCount)
	if err != nil {
		return nil, err
	}

	var privShare bls12381.G1
	if err := privShare.SetBytes(dID); err != nil {
		return nil, fmt.Errorf("encryption: invalid combined identity key: %w", err)
	}

	var ephemeral bls12381.G2
	// Encrypt published U = r*G2Generator; pairing it with the combined
	// identity private key (G1) reconstructs e(Qid, Ppub)^r, the same
	// mask Encrypt derived directly.
	if err := ephemeral.SetBytes(p.Ciphertext.Ephemeral); err != nil {
		return nil, fmt.Errorf("encryption: invalid ephemeral point: %w", err)
	}

	g := bls12381.Pair(&privShare, &ephemeral)
	key := sha256.Sum256(g.Bytes())

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("encryption: init aead: %w", err)
	}
	if len(p.Ciphertext.Sealed) < chacha20poly1305.NonceSize {
		return nil, literr.New(literr.InvalidArgumentException, "encryption: ciphertext too short")
	}
	nonce := p.Ciphertext.Sealed[:chacha20poly1305.NonceSize]
	sealed := p.Ciphertext.Sealed[chacha20poly1305.NonceSize:]

	plaintext, err = aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, literr.Wrap(literr.InvalidArgumentException, err, "encryption: decryption failed")
	}
	return plaintext, nil
}
