package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/providers/chain"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/services/monitoring/telemetry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrInsufficientBalance = errors.New("insufficient USDC balance on source chain")
	ErrApprovalFailed      = errors.New("USDC approval failed")
	ErrBurnReverted        = errors.New("depositForBurn reverted")
	ErrMessageNotFound     = errors.New("MessageSent event not found in burn receipt")
	ErrSameChain           = errors.New("source and destination chains are the same")
	ErrInvalidAttestation  = errors.New("attestation is not valid hex")
)

type BurnResult struct {
	SourceChain      domain.Chain
	DestinationChain domain.Chain
	BurnTxHash       string
	Message          []byte
	MessageHash      string
}

type MintResult struct {
	DestinationTxHash string
}

// Orchestrator moves USDC between chains by burning on the source chain and
// minting with a signed attestation on the destination chain.
type Orchestrator struct {
	gateways chain.Gateways
	logger   *logging.Logger
}

func NewOrchestrator(gateways chain.Gateways, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{gateways: gateways, logger: logger}
}

// Burn locks the full amount of p into the TokenMessenger of its source chain,
// addressed to p.Recipient on the destination chain.
func (o *Orchestrator) Burn(ctx context.Context, p *domain.Payment) (*BurnResult, error) {
	ctx, span := telemetry.Tracer("transfer").Start(ctx, "transfer.Burn")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment_id", p.ID),
		attribute.String("source_chain", p.SourceChain.String()),
		attribute.String("destination_chain", p.DestinationChain.String()),
		attribute.String("amount", p.Amount.String()),
	)

	result, err := o.burn(ctx, p.SourceChain, p.DestinationChain, p.Amount, p.Recipient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (o *Orchestrator) burn(ctx context.Context, source, destination domain.Chain, amount decimal.Decimal, recipient string) (*BurnResult, error) {
	if source == destination {
		return nil, ErrSameChain
	}
	if !common.IsHexAddress(recipient) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, recipient)
	}

	gw, err := o.gateways.Get(source)
	if err != nil {
		return nil, err
	}
	destDomain, err := chain.DomainOf(destination)
	if err != nil {
		return nil, err
	}

	contracts := gw.Contracts()
	wallet := gw.SettlementAddress()
	units := ToBaseUnits(amount)

	balance, err := gw.USDCBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(units) < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, balance, units)
	}

	allowance, err := gw.USDCAllowance(ctx, wallet, contracts.TokenMessenger)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(units) < 0 {
		o.logger.WithFields(logrus.Fields{
			"chain":     source,
			"allowance": allowance.String(),
			"required":  units.String(),
		}).Info("approving TokenMessenger")
		if _, err := gw.ApproveUSDC(ctx, contracts.TokenMessenger, units); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrApprovalFailed, err)
		}
	}

	receipt, err := gw.DepositForBurn(ctx, units, destDomain, AddressToBytes32(common.HexToAddress(recipient)))
	if errors.Is(err, chain.ErrReverted) {
		return nil, fmt.Errorf("%w: %v", ErrBurnReverted, err)
	} else if err != nil {
		return nil, fmt.Errorf("depositForBurn failed: %w", err)
	}

	message, err := ExtractMessage(receipt, contracts.MessageTransmitter)
	if err != nil {
		return nil, err
	}

	result := &BurnResult{
		SourceChain:      source,
		DestinationChain: destination,
		BurnTxHash:       receipt.TxHash.Hex(),
		Message:          message,
		MessageHash:      crypto.Keccak256Hash(message).Hex(),
	}

	o.logger.WithFields(logrus.Fields{
		"source":       source,
		"destination":  destination,
		"burn_tx":      result.BurnTxHash,
		"message_hash": result.MessageHash,
	}).Info("burn confirmed")

	return result, nil
}

// Mint redeems an attested message on the destination chain of p.
func (o *Orchestrator) Mint(ctx context.Context, p *domain.Payment, message []byte, attestation string) (*MintResult, error) {
	ctx, span := telemetry.Tracer("transfer").Start(ctx, "transfer.Mint")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment_id", p.ID),
		attribute.String("destination_chain", p.DestinationChain.String()),
	)

	sig, err := hexutil.Decode(attestation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttestation, err)
	}

	gw, err := o.gateways.Get(p.DestinationChain)
	if err != nil {
		return nil, err
	}

	receipt, err := gw.ReceiveMessage(ctx, message, sig)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("receiveMessage failed: %w", err)
	}

	return &MintResult{DestinationTxHash: receipt.TxHash.Hex()}, nil
}

// ExtractMessage returns the payload of the MessageSent event emitted by transmitter.
func ExtractMessage(receipt *types.Receipt, transmitter common.Address) ([]byte, error) {
	if receipt == nil {
		return nil, ErrMessageNotFound
	}

	event := chain.MessageTransmitterABI.Events["MessageSent"]
	for _, log := range receipt.Logs {
		if log.Address != transmitter || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		values, err := event.Inputs.Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MessageSent: %w", err)
		}
		if len(values) == 1 {
			if message, ok := values[0].([]byte); ok {
				return message, nil
			}
		}
	}
	return nil, ErrMessageNotFound
}

// ToBaseUnits converts a USDC amount to its 6-decimal integer form.
func ToBaseUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(domain.USDCDecimals).BigInt()
}

func AddressToBytes32(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[:], common.LeftPadBytes(addr.Bytes(), 32))
	return out
}
