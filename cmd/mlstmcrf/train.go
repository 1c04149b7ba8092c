package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/INotWant/QA/archive"
	"github.com/INotWant/QA/train"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var (
	trainData string
	initModel string
	saveDir   string
)

func Train(cmd *commander.Command, args []string) error {
	if err := verifyFlags(cmd, []string{"config", "data"}); err != nil {
		return err
	}
	s, err := loadSetup(true)
	if err != nil {
		return err
	}
	if saveDir != "" {
		s.Config.SaveDir = saveDir
	}
	net, err := s.Network()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if initModel != "" {
		s.Log.Printf("Loading parameters from %s", initModel)
		if err := archive.LoadFile(ctx, initModel, net.Params); err != nil {
			return err
		}
	}

	s.Log.Printf("Reading training data from %s", trainData)
	samples, err := s.Settings.ReadFile(trainData)
	if err != nil {
		return err
	}
	s.Log.Printf("Training on %d samples for %d passes", len(samples), s.Config.Passes)

	return train.New(net, s.Config, s.Log).Train(ctx, samples)
}

func TrainCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Train,
		UsageLine: "train <file options>",
		Short:     "train the tagger on labeled question/evidence records",
		Long: `
train the tagger on labeled question/evidence records

	$ ./mlstmcrf train -config <file> -data <file> [-init <model>] [-save <dir>]

Checkpoints are written after every pass to the save directory, which may
be an s3://bucket/prefix URL.
`,
		Flag: *flag.NewFlagSet("train", flag.ExitOnError),
	}
	addCommonFlags(cmd)
	cmd.Flag.StringVar(&trainData, "data", "", "JSON-lines training records (.gz allowed)")
	cmd.Flag.StringVar(&initModel, "init", "", "parameter archive to start from")
	cmd.Flag.StringVar(&saveDir, "save", "", "checkpoint directory; overrides save_dir")
	return cmd
}
