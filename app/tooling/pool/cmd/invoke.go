package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/host/disk"
	"github.com/ardanlabs/crowdpool/foundation/host/memory"
	"github.com/ardanlabs/crowdpool/foundation/logger"
	"github.com/ardanlabs/crowdpool/foundation/pool/program"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
)

// netParams maps a network name to its chain parameters.
func netParams(name string) (*chaincfg.Params, error) {
	switch name {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	}
	return nil, fmt.Errorf("unknown network %q", name)
}

// loadPool reads the pool account from disk or constructs an empty one
// owned by the program.
func loadPool(store *disk.Disk) (*host.Account, error) {
	pool, err := store.Read(poolKey())
	if err != nil {
		if errors.Is(err, disk.ErrNotFound) {
			return host.NewAccount(poolKey(), programID, nil), nil
		}
		return nil, err
	}
	return pool, nil
}

// invoke runs ins against the pool account on disk. The signing key acts as
// the payer, and as the actor when withActor is set. Any state the program
// wrote is saved even when the instruction fails.
func invoke(ins program.Instruction, withActor bool) (*memory.Runtime, error) {
	log, err := logger.New("POOL", "stderr")
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	net, err := netParams(network)
	if err != nil {
		return nil, err
	}

	store, err := disk.NewDisk(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	pool, err := loadPool(store)
	if err != nil {
		return nil, err
	}

	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return nil, err
	}

	signer := host.NewAccount(host.PublicKeyToPubkey(privateKey.PublicKey), host.Pubkey{}, nil)
	signer.IsSigner = true

	rt := memory.New(net, time.Now().Unix(), height)

	prg, err := program.New(program.Config{
		Runtime: rt,
		EvHandler: func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...), "pool", pool.Key)
		},
	})
	if err != nil {
		return nil, err
	}

	accounts := []*host.Account{pool}
	if withActor {
		accounts = append(accounts, signer)
	}
	accounts = append(accounts, signer)

	procErr := prg.ProcessInstruction(programID, accounts, ins.Encode())

	if len(rt.Transitions()) > 0 {
		if err := store.Write(pool); err != nil {
			return nil, fmt.Errorf("saving pool: %w", err)
		}
	}

	return rt, procErr
}
