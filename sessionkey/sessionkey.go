// SPDX-License-Identifier: LGPL-3.0-or-later

// Package sessionkey generates, persists and signs with the Ed25519
// session key pair the coordinator uses to mint per-request
// authorisations without re-prompting the external wallet
// (spec.md §4.B).
package sessionkey

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	naclsign "golang.org/x/crypto/nacl/sign"

	"github.com/sage-x-project/lit-coordinator/internal/logger"
	"github.com/sage-x-project/lit-coordinator/persistence"
)

// sigSize is the size of a detached NaCl/Ed25519 signature.
const sigSize = 64

// KeyPair is the session key pair, stored as lowercase hex, per
// spec.md §3 "SessionKeyPair".
type KeyPair struct {
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

// Uri returns the SessionKeyUri for this key pair: "lit:session:<pub>".
func (k KeyPair) Uri() string {
	return Uri(k.PublicKey)
}

// Uri builds the SessionKeyUri for a given hex-encoded public key.
func Uri(publicKeyHex string) string {
	return "lit:session:" + publicKeyHex
}

// IsSessionKeyPair is a structural check that x is a well-formed
// KeyPair: both fields present and valid hex of the expected length.
func IsSessionKeyPair(x interface{}) bool {
	kp, ok := x.(*KeyPair)
	if !ok {
		var v KeyPair
		if v2, ok2 := x.(KeyPair); ok2 {
			v = v2
		} else {
			return false
		}
		kp = &v
	}
	pub, err := hex.DecodeString(kp.PublicKey)
	if err != nil || len(pub) != 32 {
		return false
	}
	sec, err := hex.DecodeString(kp.SecretKey)
	if err != nil || len(sec) != 64 {
		return false
	}
	return true
}

// Generate creates a fresh Ed25519 session key pair.
func Generate() (*KeyPair, error) {
	pub, priv, err := naclsign.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("sessionkey: generate: %w", err)
	}
	return &KeyPair{
		PublicKey: hex.EncodeToString(pub[:]),
		SecretKey: hex.EncodeToString(priv[:]),
	}, nil
}

// SignDetached signs message with the session secret key using the
// "litSessionSignViaNacl" scheme: the NaCl-signed message is
// sig(64 bytes) || message, so the detached signature is its first 64
// bytes.
func SignDetached(secretKeyHex string, message []byte) ([]byte, error) {
	secret, err := hex.DecodeString(secretKeyHex)
	if err != nil || len(secret) != 64 {
		return nil, fmt.Errorf("sessionkey: invalid secret key")
	}
	var priv [64]byte
	copy(priv[:], secret)

	signed := naclsign.Sign(nil, message, &priv)
	if len(signed) < sigSize {
		return nil, fmt.Errorf("sessionkey: unexpected signed message length")
	}
	sig := make([]byte, sigSize)
	copy(sig, signed[:sigSize])
	return sig, nil
}

// VerifyDetached verifies a detached signature produced by SignDetached.
func VerifyDetached(publicKeyHex string, message, sig []byte) bool {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pub) != 32 || len(sig) != sigSize {
		return false
	}
	var pk [32]byte
	copy(pk[:], pub)

	signed := make([]byte, 0, len(sig)+len(message))
	signed = append(signed, sig...)
	signed = append(signed, message...)

	_, ok := naclsign.Open(nil, signed, &pk)
	return ok
}

// Store lazily creates, persists and reuses the process's session key
// pair, per spec.md §4.B.
type Store struct {
	adapter persistence.Adapter
	log     logger.Logger
}

// NewStore wraps a persistence.Adapter with session-key lifecycle logic.
func NewStore(adapter persistence.Adapter, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{adapter: adapter, log: log}
}

// GetSessionKey returns the persisted key pair or, on miss or parse
// failure, generates and persists a fresh one. Persistence failures are
// logged and otherwise ignored — they are never fatal to the caller.
func (s *Store) GetSessionKey() (*KeyPair, error) {
	if raw, err := s.adapter.Get(persistence.SlotSessionKey); err == nil {
		var kp KeyPair
		if jsonErr := json.Unmarshal([]byte(raw), &kp); jsonErr == nil && IsSessionKeyPair(&kp) {
			return &kp, nil
		}
		s.log.Warn("sessionkey: stored key pair unparsable, regenerating")
	}

	kp, err := Generate()
	if err != nil {
		return nil, err
	}
	s.persist(kp)
	return kp, nil
}

// Rotate discards any persisted key pair and generates a fresh one.
func (s *Store) Rotate() (*KeyPair, error) {
	kp, err := Generate()
	if err != nil {
		return nil, err
	}
	s.persist(kp)
	return kp, nil
}

func (s *Store) persist(kp *KeyPair) {
	data, err := json.Marshal(kp)
	if err != nil {
		s.log.Warn("sessionkey: marshal for persistence failed", logger.Error(err))
		return
	}
	if err := s.adapter.Set(persistence.SlotSessionKey, string(data)); err != nil {
		s.log.Warn("sessionkey: persist failed, continuing with in-memory key", logger.Error(err))
	}
}
