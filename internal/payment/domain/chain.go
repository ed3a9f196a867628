package domain

import (
	"fmt"
	"strings"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainBase     Chain = "base"
)

var SupportedChains = []Chain{ChainEthereum, ChainPolygon, ChainBase}

func ParseChain(s string) (Chain, error) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, s)
	}
	return c, nil
}

func (c Chain) IsSupported() bool {
	for _, sc := range SupportedChains {
		if c == sc {
			return true
		}
	}
	return false
}

func (c Chain) String() string { return string(c) }
