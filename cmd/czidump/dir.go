package main

import (
	"github.com/spf13/cobra"
)

var dirCMD = &cobra.Command{
	Use:   "dir FILE",
	Short: "List every tile, grouped by pyramid level",
	Args:  cobra.ExactArgs(1),
	RunE:  dirFunc,
}

func dirFunc(cmd *cobra.Command, args []string) error {
	r, err := openReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	for i, lvl := range r.Levels() {
		cmd.Printf("level %d: 1/%dx1/%d, %dx%d px, %d tiles\n",
			i, lvl.SubsampleX, lvl.SubsampleY, lvl.Width, lvl.Height, lvl.TileCount)

		tiles, err := r.Tiles(i)
		if err != nil {
			return err
		}
		for t := range tiles {
			cmd.Printf("  %s  (%d,%d) %dx%d  %s  %s  %d bytes at offset %d\n",
				t.ID, t.Desc.X, t.Desc.Y, t.Desc.Width, t.Desc.Height,
				t.Entry.PixelType, t.Entry.Compression, t.Entry.StoredSize, t.Entry.FilePosition)
		}
	}

	return nil
}
