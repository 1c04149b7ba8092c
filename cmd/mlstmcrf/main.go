// Command mlstmcrf trains and runs the match-LSTM answer
// tagger.
package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
)

var cmd = &commander.Command{
	UsageLine: os.Args[0] + " <command> [options]",
	Short:     "tag answer spans in evidence passages",
}

func init() {
	cmd.Subcommands = []*commander.Command{
		TrainCmd(),
		InferCmd(),
		ApplyCmd(),
	}
}

func main() {
	if err := cmd.Dispatch(os.Args[1:]); err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}
}
