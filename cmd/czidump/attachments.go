package main

import (
	"github.com/spf13/cobra"
)

var attachmentsCMD = &cobra.Command{
	Use:   "attachments FILE",
	Short: "List attachments, or extract one with --name",
	Args:  cobra.ExactArgs(1),
	RunE:  attachmentsFunc,
}

var (
	attachName string
	attachOut  string
)

func init() {
	attachmentsCMD.Flags().StringVar(&attachName, "name", "", "Attachment to extract")
	attachmentsCMD.Flags().StringVar(&attachOut, "out", "", "Output path (default stdout)")
}

func attachmentsFunc(cmd *cobra.Command, args []string) error {
	r, err := openReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	if attachName == "" {
		for _, a := range r.Attachments() {
			cmd.Printf("%-24s %-10s %s at offset %d\n", a.Name, a.ContentType, a.ContentGUID, a.Position)
		}

		return nil
	}

	data, err := r.AttachmentData(attachName)
	if err != nil {
		return err
	}

	return writeOut(cmd, attachOut, data)
}
