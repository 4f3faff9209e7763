package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/wlproxy/internal/errlog"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

const unknownValue = "unknown"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "wlproxyd",
	Short: "Wayland registry-filtering proxy",
	Long: color.CyanString("wlproxyd") + ` sits between a Wayland client and the
real compositor, presenting a version-clamped, rule-filtered view of
the compositor's registry to whatever application it spawns.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("WLPROXYD_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		errlog.SetLevel(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}
		cmd.Printf("wlproxyd version %s\n", ver)
		cmd.Printf("Built: %s\n", bt)
		cmd.Printf("Git commit: %s\n", gc)
	},
}

// Execute runs the root command, translating a returned error into a
// process exit status via errlog.HandleReturn.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(int(errlog.HandleReturn(err)))
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
