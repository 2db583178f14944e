package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"teddywatch/internal/config"
	"teddywatch/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start teddywatch server",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("config: %+v", conf)

	for _, dir := range []string{conf.DataDir(), conf.StaticDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			logrus.Fatalf("create dir %s failed: %v", dir, err)
		}
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	a, err := newApp(ctx, conf, nil)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start")
	}
	defer a.Close()

	var opts []server.Option
	if a.sinks.Influx != nil {
		opts = append(opts, server.WithInfluxQuery(a.sinks.Influx.QueryAPI()))
	}
	srv := server.NewServer(ctx, conf, a.pipeline, a.metrics, opts...)
	go srv.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
