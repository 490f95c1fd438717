package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ul-mds/pprl/bitvec"
	"github.com/ul-mds/pprl/similarity"
)

var (
	matchMeasure   string
	matchThreshold float64
	matchDomain    string
	matchRange     string
	matchWorkers   int
)

func init() {
	matchCmd.Flags().StringVar(&matchMeasure, "measure", "dice", "similarity measure: dice, cosine, or jaccard")
	matchCmd.Flags().Float64Var(&matchThreshold, "threshold", 0.0, "minimum similarity to emit a pair")
	matchCmd.Flags().StringVar(&matchDomain, "domain", "", "path to the domain-side bit-vector entities JSON file")
	matchCmd.Flags().StringVar(&matchRange, "range", "", "path to the range-side bit-vector entities JSON file")
	matchCmd.Flags().IntVarP(&matchWorkers, "workers", "w", 0, "worker count: 0 = single goroutine, <0 = auto-detect")
	_ = matchCmd.MarkFlagRequired("domain")
	_ = matchCmd.MarkFlagRequired("range")
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match domain bit-vector entities against range bit-vector entities",
	Run: func(cmd *cobra.Command, args []string) {
		domain, err := loadBitVectorFile(matchDomain)
		if err != nil {
			fail(err)
		}
		rng, err := loadBitVectorFile(matchRange)
		if err != nil {
			fail(err)
		}

		cfg := similarity.MatchConfig{Measure: similarity.Measure(matchMeasure), Threshold: matchThreshold}
		pairs, err := similarity.Match(cfg, domain, rng, matchWorkers)
		if err != nil {
			fail(err)
		}

		if err := writeJSON(os.Stdout, pairs); err != nil {
			fail(err)
		}
	},
}

type wireBitVectorEntity struct {
	ID     string `json:"id"`
	Vector string `json:"vector"`
	Length int    `json:"length"`
}

func loadBitVectorFile(path string) ([]similarity.Record, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var entities []wireBitVectorEntity
	if err := json.NewDecoder(in).Decode(&entities); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]similarity.Record, len(entities))
	for i, e := range entities {
		v, err := bitvec.DecodeBase64(e.Vector)
		if err != nil {
			return nil, fmt.Errorf("%s: entity %q: %w", path, e.ID, err)
		}
		// Length is the declared bit length, which may not be byte-aligned;
		// the base64 decode above always rounds up to the next byte, so
		// truncate to the declared length the same way
		// internal/server/daemon.go's toBitVectorEntities does.
		if e.Length > 0 {
			v = bitvec.FromBytes(v.Bytes(), e.Length)
		}
		out[i] = similarity.Record{ID: e.ID, Vector: v}
	}
	return out, nil
}
