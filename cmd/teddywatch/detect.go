package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"teddywatch/internal/config"
	"teddywatch/internal/stats"
	"teddywatch/pkg/log"
)

var (
	outputImage string
	dryRun      bool
)

var detectCommand = &cobra.Command{
	Use:   "detect <image>",
	Short: "Run detection on a local image file",
	Long: `Run detection on a local image file and record the result.

The badger statistics backend holds an exclusive lock on its directory, so
recording fails while serve is running against the same directory. Use
--dry-run to skip recording, or post the image to the server's /detect/
endpoint instead.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDetect(args[0])
	},
}

func init() {
	detectCommand.Flags().StringVarP(&outputImage, "output", "o", "", "Write the annotated JPEG to this path")
	detectCommand.Flags().BoolVar(&dryRun, "dry-run", false, "Do not record the result in the statistics store")
}

func runDetect(input string) {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	data, err := os.ReadFile(input)
	if err != nil {
		logrus.Fatalf("read %s failed: %v", input, err)
	}

	ctx := log.WithRequestId(context.Background(), "cli")

	var store stats.Store
	if dryRun {
		store, err = stats.NewMemoryBadgerStore(conf.Stats.HistoryLimit, log.Component(ctx, "stats"))
		if err != nil {
			logrus.Fatalf("open in-memory store failed: %v", err)
		}
	}

	a, err := newApp(ctx, conf, store)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start")
	}
	defer a.Close()

	outcome, err := a.pipeline.Process(ctx, data)
	if err != nil {
		logrus.WithError(err).Fatal("detection failed")
	}

	fmt.Println(outcome.Message)
	for _, b := range outcome.Boxes {
		fmt.Printf("  %s %.2f [%d,%d,%d,%d]\n", b.Label, b.Confidence, b.X1, b.Y1, b.X2, b.Y2)
	}

	if outputImage != "" {
		if err := os.WriteFile(outputImage, outcome.Image, 0644); err != nil {
			logrus.Fatalf("write %s failed: %v", outputImage, err)
		}
	}
}
