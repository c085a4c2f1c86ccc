// Command emoneyd opens the chain database, initializing it from
// genesis if needed, and reports the active tip.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/internal/chain"
	"github.com/nozmo-king/eMoney/internal/consensus"
	"github.com/nozmo-king/eMoney/internal/log"
	"github.com/nozmo-king/eMoney/internal/script"
	"github.com/nozmo-king/eMoney/internal/storage"
	"github.com/nozmo-king/eMoney/internal/utxo"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "emoneyd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	log.Init(cfg.Log.Level, cfg.Log.JSON)

	params, err := cfg.NetworkParams()
	if err != nil {
		return err
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.Network, "chain")
	if err := os.MkdirAll(dbPath, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	db, err := storage.NewBadger(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ch, err := chain.New(params, db, utxo.NewStore(db), script.NewEngine(), consensus.SystemClock{})
	if err != nil {
		return err
	}

	state := ch.State()
	log.Chain.Info().
		Str("network", params.Name).
		Uint32("height", state.Height).
		Uint64("supply", state.Supply).
		Str("work", state.TotalWork.String()).
		Str("tip", state.TipHash.String()).
		Msg("chain ready")
	return nil
}
