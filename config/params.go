package config

// Consensus size and policy limits. These are protocol rules: every
// node must agree on them or the network forks.
const (
	// MaxTxSize is the maximum serialized transaction size in bytes.
	MaxTxSize = 100_000

	// MaxScriptSize is the maximum size of a single input or output
	// script in bytes.
	MaxScriptSize = 10_000

	// BaseMaxBlockSize is the initial block size limit in bytes.
	BaseMaxBlockSize = 1_000_000

	// DifficultyAdjustmentInterval is the number of blocks between
	// proof-of-work retargets.
	DifficultyAdjustmentInterval = 2016

	// TargetTimespan is the desired duration of one retarget interval
	// in seconds (two weeks).
	TargetTimespan = 14 * 24 * 60 * 60

	// MaxTimeOffset is how far into the future a block timestamp may
	// run ahead of the local clock, in seconds.
	MaxTimeOffset = 2 * 60 * 60

	// MaxReorgDepth is the maximum number of active-chain blocks a
	// reorganization may disconnect.
	MaxReorgDepth = 100

	// InitialSubsidy is the block reward at height 0, in base units.
	InitialSubsidy = 5_000_000_000

	// HalvingInterval is the number of blocks between subsidy halvings.
	HalvingInterval = 210_000
)

// Params holds the per-network consensus parameters.
type Params struct {
	// Name identifies the network.
	Name string

	// GenesisTimestamp is the genesis block's header timestamp.
	GenesisTimestamp uint32

	// GenesisBits is the compact difficulty target of the genesis
	// block. It also encodes the proof-of-work limit: retargeting
	// never produces an easier target than this.
	GenesisBits uint32
}

// MaxBlockSize returns the block size limit at the given height.
// The limit is height-parameterized so a future policy can raise it;
// every network currently uses the base limit at all heights.
func (p *Params) MaxBlockSize(height uint32) uint32 {
	return BaseMaxBlockSize
}

// MainNet returns the production network parameters.
func MainNet() *Params {
	return &Params{
		Name:             "mainnet",
		GenesisTimestamp: 1698652800,
		GenesisBits:      0x1d00ffff,
	}
}

// RegNet returns the regression network parameters. The genesis target
// is large enough that a block solves in a handful of nonce attempts,
// which keeps tests and local tooling fast.
func RegNet() *Params {
	return &Params{
		Name:             "regnet",
		GenesisTimestamp: 1698652800,
		GenesisBits:      0x407fffff,
	}
}
