// Command czidump browses the contents of ZISRAW containers: the raw
// segment stream, the tile directory, pyramid geometry, metadata XML, and
// attachments.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slidecraft/zisraw"
)

var command = &cobra.Command{
	Use:           "czidump",
	Short:         "ZISRAW container inspector",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

func init() {
	command.SetOut(os.Stdout)
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the open and decode pipeline")
	command.AddCommand(
		infoCMD,
		segmentsCMD,
		dirCMD,
		xmlCMD,
		tileCMD,
		attachmentsCMD,
	)
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openReader opens path honoring the persistent flags.
func openReader(path string) (*zisraw.Reader, error) {
	var opts []zisraw.Option
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, zisraw.WithLogger(logger))
	}

	return zisraw.Open(path, opts...)
}

// parseTileID parses a hex tile identity as printed by the dir command.
func parseTileID(s string) (zisraw.TileID, error) {
	raw, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tile id %q: %w", s, err)
	}

	return zisraw.TileID(raw), nil
}

// writeOut sends buf to path, or to stdout when path is empty.
func writeOut(cmd *cobra.Command, path string, buf []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(buf)
		return err
	}

	return os.WriteFile(path, buf, 0o644)
}
