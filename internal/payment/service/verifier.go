package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/providers/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type VerificationStatus int

const (
	VerificationNotFound VerificationStatus = iota
	VerificationReverted
	VerificationConfirmed
)

func (v VerificationStatus) String() string {
	switch v {
	case VerificationReverted:
		return "reverted"
	case VerificationConfirmed:
		return "confirmed"
	default:
		return "not_found"
	}
}

type Verification struct {
	Status      VerificationStatus
	TxHash      string
	BlockNumber uint64
}

// ChainVerifier reads funding transaction receipts. It never writes.
type ChainVerifier struct {
	gateways chain.Gateways
}

func NewChainVerifier(gateways chain.Gateways) *ChainVerifier {
	return &ChainVerifier{gateways: gateways}
}

func (v *ChainVerifier) Verify(ctx context.Context, c domain.Chain, txHash string) (*Verification, error) {
	if err := ValidateTxHash(txHash); err != nil {
		return nil, err
	}
	gw, err := v.gateways.Get(c)
	if err != nil {
		return nil, err
	}

	receipt, err := gw.TransactionReceipt(ctx, common.HexToHash(txHash))
	if errors.Is(err, chain.ErrReceiptNotFound) {
		return &Verification{Status: VerificationNotFound, TxHash: txHash}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	result := &Verification{Status: VerificationReverted, TxHash: txHash}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		result.Status = VerificationConfirmed
	}
	return result, nil
}
