package main

import (
	"os"

	"github.com/spf13/cobra"

	"teddywatch/internal/version"
	"teddywatch/pkg/log"
)

var (
	logLevel   string
	logFormat  string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "teddywatch",
	Short: "teddywatch detects teddy bears in uploaded images",
	Long: `A teddy bear surveillance service: upload an image, get it back annotated.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel, logFormat)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", log.FormatText, "Log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(detectCommand)
	rootCmd.AddCommand(statsCommand)
	rootCmd.AddCommand(watchCommand)
}

func main() {
	Execute()
}
