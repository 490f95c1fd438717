package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(transformCmd)
	RootCmd.AddCommand(maskCmd)
	RootCmd.AddCommand(matchCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(estimateCmd)

	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
}

var verbose bool

// RootCmd is the main command for the `pprl` binary.
var RootCmd = &cobra.Command{
	Use:   "pprl",
	Short: "`pprl` encodes, hardens, and matches privacy-preserving bit-vector records",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// wireEntity is the CLI's JSON-array input/output shape for entities: no
// external I/O happens inside the core packages (spec §5), so the CLI is
// the one place that reads and writes records.
type wireEntity struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
}

func readEntities(r io.Reader) ([]wireEntity, error) {
	var entities []wireEntity
	if err := json.NewDecoder(r).Decode(&entities); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return entities, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) {
	logrus.WithError(err).Error("command failed")
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// openInput opens path for reading, or stdin if path is empty or "-".
// Files with an .lz4 extension are transparently decompressed, the same
// way internal/indexer/sorter.go wraps its spill-chunk files in
// lz4.NewReader — applied here to large entity/bit-vector batch files
// instead of sort-spill chunks.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".lz4") {
		return &lz4ReadCloser{Reader: lz4.NewReader(f), inner: f}, nil
	}
	return f, nil
}

// openOutput opens path for writing, or stdout if path is empty or "-".
// Files with an .lz4 extension are transparently compressed, mirroring
// sorter.go's lz4.NewWriter use for spill-chunk output.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".lz4") {
		return &lz4WriteCloser{Writer: lz4.NewWriter(f), inner: f}, nil
	}
	return f, nil
}

type lz4ReadCloser struct {
	*lz4.Reader
	inner io.Closer
}

func (r *lz4ReadCloser) Close() error { return r.inner.Close() }

type lz4WriteCloser struct {
	*lz4.Writer
	inner io.Closer
}

func (w *lz4WriteCloser) Close() error {
	if err := w.Writer.Close(); err != nil {
		return err
	}
	return w.inner.Close()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
