// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/chainhead/ethrpc"
	"github.com/sage-x-project/lit-coordinator/chainhead/solanarpc"
	"github.com/sage-x-project/lit-coordinator/client"
	"github.com/sage-x-project/lit-coordinator/config"
	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/persistence"
	"github.com/sage-x-project/lit-coordinator/persistence/postgres"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
	"github.com/sage-x-project/lit-coordinator/transport/httptransport"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

// Flags shared by every subcommand, registered on rootCmd in init().
var (
	configPath    string
	privateKeyHex string
)

// Flags specific to persistence/chain wiring, registered through
// addWiringFlags by every command that builds a connected client.
var (
	chainType  string
	pgHost     string
	pgPort     int
	pgUser     string
	pgPassword string
	pgDatabase string
)

func loadConfig() (*config.Config, error) {
	opts := config.DefaultLoaderOptions()
	if configPath != "" {
		opts.ConfigDir = configPath
	}
	return config.Load(opts)
}

func buildPersistence(ctx context.Context) (persistence.Adapter, error) {
	if pgHost == "" {
		return persistence.NewMemoryAdapter(), nil
	}
	return postgres.NewAdapter(ctx, postgres.Config{
		Host:     pgHost,
		Port:     pgPort,
		User:     pgUser,
		Password: pgPassword,
		Database: pgDatabase,
		SSLMode:  "disable",
	})
}

func buildChainHead(ctx context.Context, cfg *config.Config) (sessionsigs.ChainHeadSource, error) {
	if cfg.Chain == nil || cfg.Chain.RPC == "" {
		return nil, nil
	}
	switch chainType {
	case "solana":
		return solanarpc.New(cfg.Chain)
	default:
		return ethrpc.New(ctx, cfg.Chain)
	}
}

// localWalletAuthCallback signs SIWE auth messages with a locally-held
// secp256k1 key, mirroring walletsig's own test helper's EIP-191 signing
// shape (see walletsig_test.go's signEIP191) rather than delegating to an
// external wallet.
func localWalletAuthCallback(privKeyHex string) (walletsig.AuthNeededCallback, error) {
	privKeyHex = trimHex(privKeyHex)
	priv, err := crypto.HexToECDSA(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("litctl: parse private key: %w", err)
	}
	address := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	return func(ctx context.Context, params walletsig.AuthCallbackParams) (*walletsig.AuthSig, error) {
		msg := walletsig.BuildMessage(walletsig.MessageParams{
			Domain:    params.Domain,
			Address:   address,
			URI:       params.SessionKeyUri,
			Statement: "litctl authorizes this session key",
			ChainID:   params.Chain,
			Nonce:     params.Nonce,
			IssuedAt:  time.Now(),
		})

		hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))
		sig, err := crypto.Sign(hash.Bytes(), priv)
		if err != nil {
			return nil, fmt.Errorf("litctl: sign auth message: %w", err)
		}

		return &walletsig.AuthSig{
			Sig:           hex.EncodeToString(sig),
			DerivedVia:    "web3.eth.personal.sign",
			SignedMessage: msg,
			Address:       address,
		}, nil
	}, nil
}

// acquireSessionSigs fetches a session sig map scoped to a single
// resource/ability grant, the shape every signing/execution operation
// requires as input (spec.md §4.F feeding §4.G/§4.H).
func acquireSessionSigs(ctx context.Context, c *client.Client, kind capability.ResourceKind, ability capability.Ability) (sessionsigs.SessionSigsMap, error) {
	sigs, err := c.GetSessionSigs(ctx, sessionsigs.Params{
		ResourceAbilityRequests: []capability.ResourceAbilityRequest{{
			Resource: capability.Resource{Kind: kind, ID: "*"},
			Ability:  ability,
		}},
		Domain: "litctl.local",
		Chain:  "1",
	})
	if err != nil {
		return nil, fmt.Errorf("litctl: get session sigs: %w", err)
	}
	return sigs, nil
}

func trimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// connectedClient loads configuration, wires every component and returns
// a client.Client already through a successful Connect.
func connectedClient(ctx context.Context) (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("litctl: load config: %w", err)
	}
	if len(cfg.Nodes.URLs) == 0 {
		return nil, fmt.Errorf("litctl: no node URLs configured")
	}

	persist, err := buildPersistence(ctx)
	if err != nil {
		return nil, fmt.Errorf("litctl: build persistence adapter: %w", err)
	}

	chainHead, err := buildChainHead(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("litctl: build chain head source: %w", err)
	}

	var authCallback walletsig.AuthNeededCallback
	if privateKeyHex != "" {
		authCallback, err = localWalletAuthCallback(privateKeyHex)
		if err != nil {
			return nil, err
		}
	}

	c := client.New(cfg, persist, chainHead, newCaller, authCallback, nil)
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("litctl: connect: %w", err)
	}
	return c, nil
}

// newCaller builds the NodeCaller for a given node endpoint path, used
// by client.New to give each component (handshake, execute, pkp sign,
// claim) its own path-bound httptransport.Transport.
func newCaller(path string) dispatcher.NodeCaller {
	return httptransport.New(path).Call
}
