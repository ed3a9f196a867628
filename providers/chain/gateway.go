package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrReceiptNotFound = errors.New("transaction receipt not found")
	ErrNoSigner        = errors.New("no settlement key configured")
	ErrChainDisabled   = errors.New("chain has no rpc endpoint configured")
	ErrReverted        = errors.New("transaction reverted")
)

// Gateway talks to the CCTP contracts of one chain.
type Gateway interface {
	Chain() domain.Chain
	Contracts() ContractSet
	SettlementAddress() common.Address
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	USDCBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	USDCAllowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	ApproveUSDC(ctx context.Context, spender common.Address, amount *big.Int) (*types.Receipt, error)
	DepositForBurn(ctx context.Context, amount *big.Int, destinationDomain uint32, mintRecipient [32]byte) (*types.Receipt, error)
	ReceiveMessage(ctx context.Context, message, attestation []byte) (*types.Receipt, error)
}

type Gateways map[domain.Chain]Gateway

func (g Gateways) Get(chain domain.Chain) (Gateway, error) {
	if !chain.IsSupported() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedChain, chain)
	}
	gw, ok := g[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChainDisabled, chain)
	}
	return gw, nil
}
