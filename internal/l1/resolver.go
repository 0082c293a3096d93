// Package l1 resolves the settlement-chain settings a rollup inherits from its
// chosen L1.
package l1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/params"
)

// ErrNotSupported matches every NotSupportedError via errors.Is.
var ErrNotSupported = errors.New("l1 chain not supported")

type (
	// Settings are the L1-derived values merged into every bundle.
	Settings struct {
		ChainID          uint64 `json:"chainId" yaml:"chain-id"`
		GasToken         string `json:"gasToken" yaml:"gas-token"`
		BlockTimeSeconds uint64 `json:"blockTimeSeconds" yaml:"block-time-seconds"`
		UseClique        bool   `json:"useClique" yaml:"use-clique"`
	}

	// Chain is one entry of the supported L1 list.
	Chain struct {
		ID       uint64 `json:"id" yaml:"id"`
		Name     string `json:"name" yaml:"name"`
		GasToken string `json:"gasToken" yaml:"gas-token"`
	}

	NotSupportedError struct {
		ChainID uint64
	}

	// Resolver maps a chain id to its settings. The supported set is closed.
	Resolver struct {
		chains     []Chain
		blockTimes map[uint64]uint64
	}
)

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("l1 chain %d is not supported", e.ChainID)
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

// NewResolver returns the resolver for the built-in chain list.
func NewResolver() *Resolver {
	mainnet := params.MainnetChainConfig.ChainID.Uint64()

	return &Resolver{
		chains: []Chain{
			{ID: mainnet, Name: "Ethereum", GasToken: "ETH"},
		},
		blockTimes: map[uint64]uint64{
			mainnet: 12,
		},
	}
}

// Resolve returns the settings for a supported chain, or a *NotSupportedError.
func (r *Resolver) Resolve(chainID uint64) (Settings, error) {
	idx := slices.IndexFunc(r.chains, func(c Chain) bool { return c.ID == chainID })
	if idx < 0 {
		return Settings{}, &NotSupportedError{ChainID: chainID}
	}
	chain := r.chains[idx]

	blockTime, ok := r.blockTimes[chainID]
	if !ok {
		return Settings{}, fmt.Errorf("no block time known for l1 chain %d: %w", chainID, &NotSupportedError{ChainID: chainID})
	}

	return Settings{
		ChainID:          chain.ID,
		GasToken:         chain.GasToken,
		BlockTimeSeconds: blockTime,
		UseClique:        true,
	}, nil
}

// Supported lists every selectable L1 chain.
func (r *Resolver) Supported() []Chain {
	return slices.Clone(r.chains)
}
