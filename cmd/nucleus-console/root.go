package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nucleus-console/pkg/console"
)

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var plain bool

	root := &cobra.Command{
		Use:   "nucleus-console",
		Short: "Nucleus ops console",
		Long: `Nucleus is an operator console for a registry of network hosts.
Remote actions (troubleshooting, server scans, web scans) are simulated by a
text-generating collaborator and streamed into the console log.

With a terminal on stdin and stdout the full-screen UI starts; otherwise, or
with --plain, commands are read one per line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, flags, plain)
		},
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "Path to YAML config (defaults to XDG paths if empty)")
	root.PersistentFlags().StringVar(&flags.store, "store", "", "Store backend: file|redis|memory (overrides config)")
	root.PersistentFlags().StringVar(&flags.collaborator, "collaborator", "", "Collaborator backend: static|ollama|command (overrides config)")
	root.Flags().BoolVar(&plain, "plain", false, "Use the line-oriented console even on a terminal")

	root.AddCommand(
		newListCmd(flags),
		newExecCmd(flags),
		newConfigPathCmd(flags),
		newTranscriptCmd(flags),
	)
	return root
}

func runConsole(cmd *cobra.Command, flags *globalFlags, plain bool) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.startMetrics(ctx); err != nil {
		return err
	}
	a.session.Init()

	stdinTTY := isTerminal(cmd.InOrStdin())
	stdoutTTY := isTerminal(cmd.OutOrStdout())
	if !plain && stdinTTY && stdoutTTY {
		flushTTYInput()
		defer flushTTYInput()
		return console.Run(ctx, a.interp, console.Options{
			Theme:  console.ThemeByName(a.cfg.ThemeName()),
			Logger: a.logger,
		})
	}
	return console.RunLines(ctx, a.interp, cmd.InOrStdin(), cmd.OutOrStdout(), console.LineOptions{
		Color:  stdoutTTY && a.cfg.ThemeName() != "none",
		Prompt: stdinTTY,
		Replay: true,
		Logger: a.logger,
	})
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
