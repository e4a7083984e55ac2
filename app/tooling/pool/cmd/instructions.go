package cmd

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ardanlabs/crowdpool/foundation/pool/program"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	paramsPath  string
	amount      uint64
	address     string
	description string
	proposalID  uint64
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the pool from a parameters file",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := loadParams(paramsPath)
		if err != nil {
			log.Fatal(err)
		}

		if _, err := invoke(program.InitializePool(params), false); err != nil {
			log.Fatal(err)
		}
	},
}

var contributeCmd = &cobra.Command{
	Use:   "contribute",
	Short: "Pledge funds to the pool",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := invoke(program.Contribute(amount), true); err != nil {
			log.Fatal(err)
		}
	},
}

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Submit a payout proposal",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := invoke(program.SubmitProposal(address, description), true); err != nil {
			log.Fatal(err)
		}
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote for a proposal",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := invoke(program.CastVote(proposalID), true); err != nil {
			log.Fatal(err)
		}
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Pay the winning proposal and print the unsigned transaction",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := invoke(program.ExecuteTransfer(), false)
		if err != nil {
			log.Fatal(err)
		}

		for _, tx := range rt.Transactions() {
			var buf bytes.Buffer
			if err := tx.Transaction.Serialize(&buf); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("txid: %s\n", tx.Transaction.TxHash())
			fmt.Printf("raw:  %s\n", hexutil.Encode(buf.Bytes()))
		}
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw your whole pledge while contributions are open",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := invoke(program.EmergencyWithdraw(), true); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&paramsPath, "params", "f", "pool.yaml", "Path to the pool parameters file.")

	rootCmd.AddCommand(contributeCmd)
	contributeCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Satoshis to pledge.")

	rootCmd.AddCommand(proposeCmd)
	proposeCmd.Flags().StringVarP(&address, "address", "t", "", "Bitcoin payout address.")
	proposeCmd.Flags().StringVarP(&description, "description", "m", "", "Description of the proposal.")

	rootCmd.AddCommand(voteCmd)
	voteCmd.Flags().Uint64VarP(&proposalID, "id", "i", 0, "Proposal to vote for.")

	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(withdrawCmd)
}
