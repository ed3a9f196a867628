package chain

import (
	"fmt"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/utils"
	"github.com/ethereum/go-ethereum/common"
)

// ContractSet holds the CCTP deployment of one chain.
type ContractSet struct {
	Chain              domain.Chain
	ChainID            int64
	Domain             uint32
	TokenMessenger     common.Address
	MessageTransmitter common.Address
	USDC               common.Address
}

var defaultContracts = map[domain.Chain]ContractSet{
	domain.ChainEthereum: {
		Chain:              domain.ChainEthereum,
		ChainID:            1,
		Domain:             0,
		TokenMessenger:     common.HexToAddress("0xBd3fa81B58Ba92a82136038B25aDec7066af3155"),
		MessageTransmitter: common.HexToAddress("0x0a992d191DEeC32aFe36203Ad87D7d289a738F81"),
		USDC:               common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	},
	domain.ChainPolygon: {
		Chain:              domain.ChainPolygon,
		ChainID:            137,
		Domain:             7,
		TokenMessenger:     common.HexToAddress("0x9daF8c91AEFAE50b9c0E69629D3F6Ca40cA3B3FE"),
		MessageTransmitter: common.HexToAddress("0xF3be9355363857F3e001be68856A2f96b4C39Ba9"),
		USDC:               common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"),
	},
	domain.ChainBase: {
		Chain:              domain.ChainBase,
		ChainID:            8453,
		Domain:             6,
		TokenMessenger:     common.HexToAddress("0x1682Ae6375C4E4A97e4B583BC394c861A46D8962"),
		MessageTransmitter: common.HexToAddress("0xAD09780d193884d503182aD4588450C416D6F9D4"),
		USDC:               common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
	},
}

// DefaultContracts returns the mainnet deployment for a chain.
func DefaultContracts(chain domain.Chain) (ContractSet, error) {
	cs, ok := defaultContracts[chain]
	if !ok {
		return ContractSet{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedChain, chain)
	}
	return cs, nil
}

// DomainOf returns the CCTP domain id of a chain.
func DomainOf(chain domain.Chain) (uint32, error) {
	cs, err := DefaultContracts(chain)
	if err != nil {
		return 0, err
	}
	return cs.Domain, nil
}

type addressOverrides struct {
	tokenMessenger     string
	messageTransmitter string
	usdc               string
}

// ContractsFromConfig applies per chain address overrides on top of the defaults.
func ContractsFromConfig(c *utils.Config) (map[domain.Chain]ContractSet, error) {
	overrides := map[domain.Chain]addressOverrides{
		domain.ChainEthereum: {c.EthereumTokenMessenger, c.EthereumMessageTransmitter, c.EthereumUSDC},
		domain.ChainPolygon:  {c.PolygonTokenMessenger, c.PolygonMessageTransmitter, c.PolygonUSDC},
		domain.ChainBase:     {c.BaseTokenMessenger, c.BaseMessageTransmitter, c.BaseUSDC},
	}

	sets := make(map[domain.Chain]ContractSet, len(defaultContracts))
	for chain, cs := range defaultContracts {
		o := overrides[chain]
		for _, field := range []struct {
			value string
			dst   *common.Address
		}{
			{o.tokenMessenger, &cs.TokenMessenger},
			{o.messageTransmitter, &cs.MessageTransmitter},
			{o.usdc, &cs.USDC},
		} {
			if field.value == "" {
				continue
			}
			if !common.IsHexAddress(field.value) {
				return nil, fmt.Errorf("invalid contract address override %q for %s", field.value, chain)
			}
			*field.dst = common.HexToAddress(field.value)
		}
		sets[chain] = cs
	}
	return sets, nil
}

// RPCURL returns the configured endpoint for a chain, empty if the chain is disabled.
func RPCURL(c *utils.Config, chain domain.Chain) string {
	switch chain {
	case domain.ChainEthereum:
		return c.EthereumRPCURL
	case domain.ChainPolygon:
		return c.PolygonRPCURL
	case domain.ChainBase:
		return c.BaseRPCURL
	}
	return ""
}
