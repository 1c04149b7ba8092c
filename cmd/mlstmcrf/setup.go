package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/INotWant/QA/config"
	"github.com/INotWant/QA/matchlstm"
	"github.com/INotWant/QA/reader"
	"github.com/INotWant/QA/vocab"
	"github.com/gonuts/commander"
	"github.com/unixpickle/anyvec/anyvec64"
)

var (
	configFile string
	numWorkers int
)

// A setup holds what every command loads before it can
// build a network.
type setup struct {
	Config   *config.Config
	Vocab    *vocab.Vocab
	Settings *reader.Settings
	Log      *log.Logger
}

func addCommonFlags(cmd *commander.Command) {
	cmd.Flag.StringVar(&configFile, "config", "", "YAML configuration file")
	cmd.Flag.IntVar(&numWorkers, "workers", 0, "concurrent samples; 0 = use config")
}

func verifyFlags(cmd *commander.Command, required []string) error {
	for _, name := range required {
		f := cmd.Flag.Lookup(name)
		if f == nil || f.Value.String() == "" {
			return fmt.Errorf("%s: missing required flag -%s", cmd.Name(), name)
		}
	}
	return nil
}

func loadSetup(training bool) (*setup, error) {
	cfg, err := config.ReadFile(configFile)
	if err != nil {
		return nil, err
	}
	if numWorkers > 0 {
		cfg.Workers = numWorkers
	}
	if cfg.DictPath == "" {
		return nil, fmt.Errorf("config: dict_path is required")
	}
	v, err := vocab.ReadFile(cfg.DictPath)
	if err != nil {
		return nil, err
	}
	if cfg.VocabSize == 0 {
		cfg.VocabSize = v.Size()
	} else if cfg.VocabSize != v.Size() {
		return nil, fmt.Errorf("config: vocab_size %d but dictionary has %d entries",
			cfg.VocabSize, v.Size())
	}
	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("Configuration")
	logger.Printf("Dictionary:\t%s (%d entries)", cfg.DictPath, v.Size())
	logger.Printf("Schema:    \t%s (%d labels)", schema, cfg.LabelNum)
	logger.Printf("Workers:   \t%d", cfg.Workers)
	return &setup{
		Config: cfg,
		Vocab:  v,
		Settings: &reader.Settings{
			Vocab:    v,
			Schema:   schema,
			Training: training,
		},
		Log: logger,
	}, nil
}

// Network creates a freshly initialized network.
// The word vectors come from word_vec_path if set.
func (s *setup) Network() (*matchlstm.Network, error) {
	cfg := s.Config
	gen := rand.New(rand.NewSource(cfg.Seed))
	var wordVecs []float64
	if cfg.WordVecPath != "" {
		var err error
		wordVecs, err = vocab.LoadWordVectorsFile(cfg.WordVecPath, s.Vocab, cfg.WordVecDim,
			cfg.DefaultInitStd, gen)
		if err != nil {
			return nil, err
		}
		s.Log.Printf("Loaded word vectors from %s", cfg.WordVecPath)
	} else {
		wordVecs = vocab.RandomWordVectors(s.Vocab, cfg.WordVecDim, cfg.DefaultInitStd, gen)
	}
	return matchlstm.New(anyvec64.DefaultCreator{}, cfg, wordVecs, gen), nil
}
