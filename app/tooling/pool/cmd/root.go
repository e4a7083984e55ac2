// Package cmd contains the pool operator commands.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/nameservice"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	dbPath      string
	poolName    string
	network     string
	height      uint32
)

// programID identifies the pool program in every account the tool writes.
var programID = host.NamedPubkey("crowdpool")

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Path to the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zpool/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "zpool/pool.db/", "Path to the directory holding account files.")
	rootCmd.PersistentFlags().StringVar(&poolName, "pool", "pool", "Name of the pool account.")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "mainnet", "Bitcoin network for payout addresses.")
	rootCmd.PersistentFlags().Uint32Var(&height, "height", 800_000, "Bitcoin block height used as the payout lock time.")
}

var rootCmd = &cobra.Command{
	Use:   "pool",
	Short: "Operate a Bitcoin crowdfunding pool",
}

// Execute runs the command selected on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, nameservice.KeyExt) {
		accountName += nameservice.KeyExt
	}

	return filepath.Join(accountPath, accountName)
}

func poolKey() host.Pubkey {
	return host.NamedPubkey(poolName)
}
