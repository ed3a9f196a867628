package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/Swyp/Swyp-Backend/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

type EVMProvider struct {
	contracts      ContractSet
	client         *ethclient.Client
	key            *ecdsa.PrivateKey
	address        common.Address
	rpcTimeout     time.Duration
	receiptTimeout time.Duration
	logger         *logging.Logger

	usdc        *bind.BoundContract
	messenger   *bind.BoundContract
	transmitter *bind.BoundContract

	// one wallet signs for every payment; nonces are assigned one send at a time
	sendMu sync.Mutex
}

func NewEVMProvider(ctx context.Context, contracts ContractSet, rpcURL string, key *ecdsa.PrivateKey, c *utils.Config, logger *logging.Logger) (*EVMProvider, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s rpc: %w", contracts.Chain, err)
	}

	p := &EVMProvider{
		contracts:      contracts,
		client:         client,
		key:            key,
		rpcTimeout:     c.ChainRPCTimeout,
		receiptTimeout: c.ChainReceiptTimeout,
		logger:         logger,
		usdc:           bind.NewBoundContract(contracts.USDC, ERC20ABI, client, client, client),
		messenger:      bind.NewBoundContract(contracts.TokenMessenger, TokenMessengerABI, client, client, client),
		transmitter:    bind.NewBoundContract(contracts.MessageTransmitter, MessageTransmitterABI, client, client, client),
	}
	if key != nil {
		p.address = crypto.PubkeyToAddress(key.PublicKey)
	}
	return p, nil
}

func (p *EVMProvider) Chain() domain.Chain               { return p.contracts.Chain }
func (p *EVMProvider) Contracts() ContractSet            { return p.contracts }
func (p *EVMProvider) SettlementAddress() common.Address { return p.address }

func (p *EVMProvider) Close() {
	p.client.Close()
}

func (p *EVMProvider) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.rpcTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.rpcTimeout)
}

func (p *EVMProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	receipt, err := p.client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt on %s: %w", p.contracts.Chain, err)
	}
	return receipt, nil
}

func (p *EVMProvider) USDCBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return p.callUint(ctx, p.usdc, "balanceOf", owner)
}

func (p *EVMProvider) USDCAllowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return p.callUint(ctx, p.usdc, "allowance", owner, spender)
}

func (p *EVMProvider) callUint(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*big.Int, error) {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s call failed on %s: %w", method, p.contracts.Chain, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values on %s", method, p.contracts.Chain)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned unexpected type %T", method, out[0])
	}
	return value, nil
}

func (p *EVMProvider) ApproveUSDC(ctx context.Context, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	return p.transact(ctx, p.usdc, "approve", spender, amount)
}

func (p *EVMProvider) DepositForBurn(ctx context.Context, amount *big.Int, destinationDomain uint32, mintRecipient [32]byte) (*types.Receipt, error) {
	return p.transact(ctx, p.messenger, "depositForBurn", amount, destinationDomain, mintRecipient, p.contracts.USDC)
}

func (p *EVMProvider) ReceiveMessage(ctx context.Context, message, attestation []byte) (*types.Receipt, error) {
	return p.transact(ctx, p.transmitter, "receiveMessage", message, attestation)
}

// transact submits a transaction and waits for it to be mined.
func (p *EVMProvider) transact(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*types.Receipt, error) {
	if p.key == nil {
		return nil, ErrNoSigner
	}

	opts, err := bind.NewKeyedTransactorWithChainID(p.key, big.NewInt(p.contracts.ChainID))
	if err != nil {
		return nil, err
	}

	sendCtx, cancel := p.callContext(ctx)
	opts.Context = sendCtx
	p.sendMu.Lock()
	tx, err := contract.Transact(opts, method, params...)
	p.sendMu.Unlock()
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%s failed on %s: %w", method, p.contracts.Chain, err)
	}

	p.logger.WithFields(logrus.Fields{
		"chain":  p.contracts.Chain,
		"method": method,
		"tx":     tx.Hash().Hex(),
	}).Info("submitted transaction")

	waitCtx := ctx
	if p.receiptTimeout > 0 {
		var waitCancel context.CancelFunc
		waitCtx, waitCancel = context.WithTimeout(ctx, p.receiptTimeout)
		defer waitCancel()
	}

	receipt, err := bind.WaitMined(waitCtx, p.client, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s on %s: %w", method, p.contracts.Chain, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s on %s (tx %s)", ErrReverted, method, p.contracts.Chain, tx.Hash().Hex())
	}
	return receipt, nil
}

// ParsePrivateKey accepts a hex key with or without 0x. An empty key yields nil.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid settlement private key: %w", err)
	}
	return key, nil
}

// DialGateways connects to every chain with a configured rpc endpoint.
func DialGateways(ctx context.Context, c *utils.Config, logger *logging.Logger) (Gateways, func(), error) {
	sets, err := ContractsFromConfig(c)
	if err != nil {
		return nil, nil, err
	}
	key, err := ParsePrivateKey(c.SettlementPrivateKey)
	if err != nil {
		return nil, nil, err
	}

	gateways := Gateways{}
	var opened []*EVMProvider
	closeAll := func() {
		for _, p := range opened {
			p.Close()
		}
	}

	for _, chain := range domain.SupportedChains {
		url := RPCURL(c, chain)
		if url == "" {
			logger.Warn(fmt.Sprintf("no rpc endpoint for %s, chain disabled", chain))
			continue
		}
		p, err := NewEVMProvider(ctx, sets[chain], url, key, c, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opened = append(opened, p)
		gateways[chain] = p
	}

	if key == nil {
		logger.Warn("no settlement key configured, cross-chain burns are disabled")
	}
	return gateways, closeAll, nil
}
