package consensus

import "github.com/nozmo-king/eMoney/config"

// BlockSubsidy returns the block reward at the given height. The
// subsidy halves every HalvingInterval blocks and is zero once the
// halving shift saturates a 64-bit value.
func BlockSubsidy(height uint32) uint64 {
	halvings := height / config.HalvingInterval
	if halvings >= 64 {
		return 0
	}
	return config.InitialSubsidy >> halvings
}
