package types

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkCode represents a supported EVM network
type NetworkCode string

const (
	// Ethereum networks
	NetworkETH        NetworkCode = "ETH"
	NetworkETHSepolia NetworkCode = "ETH-sepolia"
	NetworkETHGoerli  NetworkCode = "ETH-goerli"

	// Lux networks
	NetworkLUX        NetworkCode = "LUX"
	NetworkLUXTestnet NetworkCode = "LUX-testnet"

	// Other networks
	NetworkGnosis  NetworkCode = "GNO"
	NetworkPolygon NetworkCode = "POL"
)

// Canonical Safe v1.3.0 deployments, identical on every EVM chain.
var (
	SafeSingletonV130 = common.HexToAddress("0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552")
	MultiSendV130     = common.HexToAddress("0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761")
)

// Network is the chain a Safe lives on.
type Network struct {
	Code      NetworkCode
	ChainID   uint64
	MultiSend common.Address
}

// SupportedNetworks contains all supported network codes
var SupportedNetworks = map[NetworkCode]Network{
	NetworkETH:        {Code: NetworkETH, ChainID: 1, MultiSend: MultiSendV130},
	NetworkETHSepolia: {Code: NetworkETHSepolia, ChainID: 11155111, MultiSend: MultiSendV130},
	NetworkETHGoerli:  {Code: NetworkETHGoerli, ChainID: 5, MultiSend: MultiSendV130},
	NetworkLUX:        {Code: NetworkLUX, ChainID: 96369, MultiSend: MultiSendV130},
	NetworkLUXTestnet: {Code: NetworkLUXTestnet, ChainID: 96368, MultiSend: MultiSendV130},
	NetworkGnosis:     {Code: NetworkGnosis, ChainID: 100, MultiSend: MultiSendV130},
	NetworkPolygon:    {Code: NetworkPolygon, ChainID: 137, MultiSend: MultiSendV130},
}

// IsNetworkSupported checks if a network code is supported
func IsNetworkSupported(network string) bool {
	_, ok := SupportedNetworks[NetworkCode(network)]
	return ok
}

// LookupNetwork returns the network for code.
func LookupNetwork(code string) (Network, bool) {
	n, ok := SupportedNetworks[NetworkCode(code)]
	return n, ok
}

// NetworkCodes lists the supported codes in sorted order.
func NetworkCodes() []string {
	codes := make([]string, 0, len(SupportedNetworks))
	for c := range SupportedNetworks {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)
	return codes
}
