package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/INotWant/QA/archive"
	"github.com/INotWant/QA/infer"
	"github.com/INotWant/QA/matchlstm"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/unixpickle/essentials"
)

// applyEvidences is the number of evidence lines read in
// application mode.
const applyEvidences = 3

var (
	modelFile string
	testData  string
	outFile   string
	inputFile string
)

func loadNetwork(ctx context.Context, s *setup) (*matchlstm.Network, error) {
	net, err := s.Network()
	if err != nil {
		return nil, err
	}
	s.Log.Printf("Loading parameters from %s", modelFile)
	if err := archive.LoadFile(ctx, modelFile, net.Params); err != nil {
		return nil, err
	}
	return net, nil
}

func Infer(cmd *commander.Command, args []string) error {
	if err := verifyFlags(cmd, []string{"config", "model", "data"}); err != nil {
		return err
	}
	s, err := loadSetup(false)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	net, err := loadNetwork(ctx, s)
	if err != nil {
		return err
	}
	s.Log.Printf("Reading test data from %s", testData)
	samples, err := s.Settings.ReadFile(testData)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return essentials.AddCtx("infer", err)
		}
		defer f.Close()
		w = f
	}
	inferer := &infer.Inferer{Net: net, Workers: s.Config.Workers, Log: s.Log}
	return inferer.Run(ctx, samples, s.Config.BatchSize, w)
}

func InferCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Infer,
		UsageLine: "infer <file options>",
		Short:     "tag every evidence of a test set",
		Long: `
tag every evidence of a test set

	$ ./mlstmcrf infer -config <file> -model <archive> -data <file> [-out <file>]

One group of records is written per batch, in input order.
`,
		Flag: *flag.NewFlagSet("infer", flag.ExitOnError),
	}
	addCommonFlags(cmd)
	cmd.Flag.StringVar(&modelFile, "model", "", "parameter archive (local path or s3:// URL)")
	cmd.Flag.StringVar(&testData, "data", "", "JSON-lines test records (.gz allowed)")
	cmd.Flag.StringVar(&outFile, "out", "", "output file; stdout when empty")
	return cmd
}

func Apply(cmd *commander.Command, args []string) error {
	if err := verifyFlags(cmd, []string{"config", "model"}); err != nil {
		return err
	}
	s, err := loadSetup(false)
	if err != nil {
		return err
	}
	net, err := loadNetwork(context.Background(), s)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return essentials.AddCtx("apply", err)
		}
		defer f.Close()
		r = f
	}
	inferer := &infer.Inferer{Net: net, Log: s.Log}
	return inferer.Apply(s.Settings, r, applyEvidences, os.Stdout)
}

func ApplyCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Apply,
		UsageLine: "apply <file options>",
		Short:     "tag the evidences of a single question",
		Long: `
tag the evidences of a single question

	$ ./mlstmcrf apply -config <file> -model <archive> [-input <file>]

The input holds the question on its first line and up to three evidences
on the following lines, all whitespace-tokenized.
`,
		Flag: *flag.NewFlagSet("apply", flag.ExitOnError),
	}
	addCommonFlags(cmd)
	cmd.Flag.StringVar(&modelFile, "model", "", "parameter archive (local path or s3:// URL)")
	cmd.Flag.StringVar(&inputFile, "input", "", "input file; stdin when empty")
	return cmd
}
