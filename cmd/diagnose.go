package cmd

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/scanstamp/internal/oracle"
	"github.com/fakeyudi/scanstamp/internal/ui"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check availability of optional external dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

		printer.Header("Scanstamp diagnose")
		printer.Line("tesseract: %s", okOrMissing(onPath("tesseract")))
		printer.Line("sgpt: %s", okOrMissing(oracle.HasSgpt()))
		printer.Line("OPENAI_API_KEY: %s", setOrUnset(oracle.HasAPIKey()))
		printer.Line("LLM available: %s", okOrMissing(oracle.Available()))
		return nil
	},
}

func onPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func okOrMissing(ok bool) string {
	if ok {
		return "OK"
	}
	return "missing"
}

func setOrUnset(set bool) string {
	if set {
		return "set"
	}
	return "unset"
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}
