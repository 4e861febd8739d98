package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/slidecraft/zisraw/segment"
)

var segmentsCMD = &cobra.Command{
	Use:   "segments FILE",
	Short: "Walk the raw segment stream without interpreting payloads",
	Args:  cobra.ExactArgs(1),
	RunE:  segmentsFunc,
}

func segmentsFunc(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	cmd.Printf("%-12s %-18s %12s %12s\n", "OFFSET", "SEGMENT", "ALLOCATED", "USED")

	cur := segment.NewCursor(f, st.Size())
	for {
		seg, err := cur.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		cmd.Printf("%-12d %-18s %12d %12d\n",
			seg.Pos, seg.Header.ID, seg.Header.AllocatedSize, seg.Header.UsedSize)
	}
}
