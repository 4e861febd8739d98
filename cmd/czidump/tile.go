package main

import (
	"github.com/spf13/cobra"
)

var tileCMD = &cobra.Command{
	Use:   "tile FILE ID",
	Short: "Extract one tile's pixels, decoded or stored",
	Args:  cobra.ExactArgs(2),
	RunE:  tileFunc,
}

var (
	tileRaw   bool
	tileOut   string
	tileLevel int
)

func init() {
	tileCMD.Flags().BoolVar(&tileRaw, "raw", false, "Write the stored payload without decoding")
	tileCMD.Flags().StringVar(&tileOut, "out", "", "Output path (default stdout)")
	tileCMD.Flags().IntVar(&tileLevel, "level", -1,
		"Resolve the identity on one pyramid level (default: finest level holding it)")
}

func tileFunc(cmd *cobra.Command, args []string) error {
	r, err := openReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	id, err := parseTileID(args[1])
	if err != nil {
		return err
	}

	var buf []byte
	switch {
	case tileRaw && tileLevel >= 0:
		buf, err = r.TileRawAt(tileLevel, id)
	case tileRaw:
		buf, err = r.TileRaw(id)
	case tileLevel >= 0:
		buf, err = r.TileDataAt(tileLevel, id)
	default:
		buf, err = r.TileData(id)
	}
	if err != nil {
		return err
	}

	return writeOut(cmd, tileOut, buf)
}
