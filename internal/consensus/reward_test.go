package consensus

import (
	"testing"

	"github.com/nozmo-king/eMoney/config"
)

func TestBlockSubsidyHalvings(t *testing.T) {
	if got := BlockSubsidy(0); got != config.InitialSubsidy {
		t.Errorf("subsidy at 0 = %d", got)
	}
	if got := BlockSubsidy(config.HalvingInterval - 1); got != config.InitialSubsidy {
		t.Errorf("subsidy just before halving = %d", got)
	}
	if got := BlockSubsidy(config.HalvingInterval); got != config.InitialSubsidy/2 {
		t.Errorf("subsidy at first halving = %d", got)
	}
	if got := BlockSubsidy(10 * config.HalvingInterval); got != config.InitialSubsidy>>10 {
		t.Errorf("subsidy at tenth halving = %d", got)
	}
}

func TestBlockSubsidyExhausts(t *testing.T) {
	if got := BlockSubsidy(64 * config.HalvingInterval); got != 0 {
		t.Errorf("subsidy after 64 halvings = %d, want 0", got)
	}
	// The largest representable height is also exhausted.
	if got := BlockSubsidy(^uint32(0)); got != 0 {
		t.Errorf("subsidy at max height = %d, want 0", got)
	}
}
