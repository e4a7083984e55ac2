package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/host/disk"
	"github.com/ardanlabs/crowdpool/foundation/nameservice"
	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the pool summary and its proposals",
	Run:   showRun,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showRun(cmd *cobra.Command, args []string) {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		log.Fatal(err)
	}

	store, err := disk.NewDisk(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	pool, err := store.Read(poolKey())
	if err != nil {
		log.Fatal(err)
	}

	c, err := contract.Decode(pool.Data.Snapshot())
	if err != nil {
		log.Fatal(err)
	}

	if err := writePool(os.Stdout, pool.Key, c, ns); err != nil {
		log.Fatal(err)
	}
}

// writePool prints the pool summary, its contributors in ascending key
// order and its proposals in ascending id order.
func writePool(w io.Writer, poolKey host.Pubkey, c *contract.Contract, ns *nameservice.NameService) error {
	info, err := c.PoolInfo()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Pool: %s\n", poolKey)
	fmt.Fprintf(w, "State: %s\n", info.State)
	fmt.Fprintf(w, "Balance: %d\n", info.TotalBalance)
	fmt.Fprintf(w, "Contributors: %d  Proposals: %d  Votes: %d\n", info.TotalContributors, info.TotalProposals, info.TotalVotes)
	fmt.Fprintf(w, "Contributions close: %s\n", time.Unix(info.ContributionDeadline, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Voting closes: %s\n\n", time.Unix(info.VotingDeadline, 0).UTC().Format(time.RFC3339))

	// Map order is random so sort the keys for a stable listing.
	keys := make([]host.Pubkey, 0, len(c.Contributions))
	for key := range c.Contributions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	for _, key := range keys {
		fmt.Fprintf(w, "Contributor: %s  Amount: %d\n", ns.Lookup(key), c.Contributions[key])
	}

	winner, paid := c.Winner()
	for _, p := range c.ListProposals() {
		mark := " "
		if paid && p.ID == winner.ID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s Proposal: %d  Votes: %d  Address: %s  By: %s  %s\n", mark, p.ID, p.Votes, p.BitcoinAddress, ns.Lookup(p.Proposer), p.Description)
	}

	return nil
}
