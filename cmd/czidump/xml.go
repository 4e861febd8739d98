package main

import (
	"github.com/spf13/cobra"
)

var xmlCMD = &cobra.Command{
	Use:   "xml FILE",
	Short: "Print the document metadata XML, or one tile's with --tile",
	Args:  cobra.ExactArgs(1),
	RunE:  xmlFunc,
}

var xmlTile string

func init() {
	xmlCMD.Flags().StringVar(&xmlTile, "tile", "", "Tile ID (hex) whose embedded XML to print")
}

func xmlFunc(cmd *cobra.Command, args []string) error {
	r, err := openReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	if xmlTile == "" {
		cmd.Print(string(r.Metadata()))

		return nil
	}

	id, err := parseTileID(xmlTile)
	if err != nil {
		return err
	}

	meta, err := r.TileMetadata(id)
	if err != nil {
		return err
	}
	cmd.Print(string(meta))

	return nil
}
