// Package ethlog decodes raw EVM logs emitted by Aave v2 style lending
// pools into domain events.
package ethlog

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ParseABI parses an ABI JSON string.
func ParseABI(abiJSON string) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

var (
	lendingPoolOnce sync.Once
	lendingPoolABI  *abi.ABI
	lendingPoolErr  error
)

// LendingPoolABI returns the parsed event ABI of the lending pool
// contract. The ABI is parsed once and cached.
func LendingPoolABI() (*abi.ABI, error) {
	lendingPoolOnce.Do(func() {
		lendingPoolABI, lendingPoolErr = ParseABI(lendingPoolEventsJSON)
	})
	return lendingPoolABI, lendingPoolErr
}

const lendingPoolEventsJSON = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": false, "name": "user", "type": "address"},
			{"indexed": true, "name": "onBehalfOf", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": true, "name": "referral", "type": "uint16"}
		],
		"name": "Deposit",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "Withdraw",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": false, "name": "user", "type": "address"},
			{"indexed": true, "name": "onBehalfOf", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "borrowRateMode", "type": "uint256"},
			{"indexed": false, "name": "borrowRate", "type": "uint256"},
			{"indexed": true, "name": "referral", "type": "uint16"}
		],
		"name": "Borrow",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"},
			{"indexed": true, "name": "repayer", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "Repay",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"},
			{"indexed": false, "name": "rateMode", "type": "uint256"}
		],
		"name": "Swap",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"}
		],
		"name": "RebalanceStableBorrowRate",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "collateralAsset", "type": "address"},
			{"indexed": true, "name": "debtAsset", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"},
			{"indexed": false, "name": "debtToCover", "type": "uint256"},
			{"indexed": false, "name": "liquidatedCollateralAmount", "type": "uint256"},
			{"indexed": false, "name": "liquidator", "type": "address"},
			{"indexed": false, "name": "receiveAToken", "type": "bool"}
		],
		"name": "LiquidationCall",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "target", "type": "address"},
			{"indexed": true, "name": "initiator", "type": "address"},
			{"indexed": true, "name": "asset", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "premium", "type": "uint256"},
			{"indexed": false, "name": "referralCode", "type": "uint16"}
		],
		"name": "FlashLoan",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"}
		],
		"name": "ReserveUsedAsCollateralEnabled",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": true, "name": "user", "type": "address"}
		],
		"name": "ReserveUsedAsCollateralDisabled",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "reserve", "type": "address"},
			{"indexed": false, "name": "liquidityRate", "type": "uint256"},
			{"indexed": false, "name": "stableBorrowRate", "type": "uint256"},
			{"indexed": false, "name": "variableBorrowRate", "type": "uint256"},
			{"indexed": false, "name": "liquidityIndex", "type": "uint256"},
			{"indexed": false, "name": "variableBorrowIndex", "type": "uint256"}
		],
		"name": "ReserveDataUpdated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [],
		"name": "Paused",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [],
		"name": "Unpaused",
		"type": "event"
	}
]`
