package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nucleus-console/pkg/engine"
	"nucleus-console/pkg/transcript"
)

func newTranscriptCmd(flags *globalFlags) *cobra.Command {
	var (
		operator string
		lines    int
		list     bool
	)
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Show the newest console transcript of an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if operator == "" {
				operator = engine.DefaultOperator
			}
			w, err := transcript.NewWriter(transcript.Options{BaseDir: cfg.TranscriptDir()}, nil)
			if err != nil {
				return err
			}
			files, err := w.List(operator)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if list {
				for _, f := range files {
					fmt.Fprintln(out, f)
				}
				return nil
			}
			if len(files) == 0 {
				return errors.New("no transcripts for " + operator)
			}
			rows, err := transcript.Tail(files[0], lines)
			if err != nil {
				return err
			}
			for _, r := range rows {
				fmt.Fprintln(out, r)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&operator, "operator", "o", "", "Operator whose transcript to show (default admin)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVar(&list, "list", false, "List transcript files, newest first")
	return cmd
}
