// This program performs operator tasks against a crowdfunding pool stored
// on disk.
package main

import "github.com/ardanlabs/crowdpool/app/tooling/pool/cmd"

func main() {
	cmd.Execute()
}
