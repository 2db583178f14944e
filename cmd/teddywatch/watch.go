package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"teddywatch/internal/config"
	"teddywatch/internal/consumer"
	"teddywatch/internal/dao"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Follow detection events published to NSQ",
	Run: func(cmd *cobra.Command, args []string) {
		runWatch()
	},
}

func runWatch() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	c, err := consumer.NewConsumer(conf.NSQ, func(msg *dao.DetectionMessage) error {
		logrus.WithFields(logrus.Fields{
			"kind":      msg.Kind,
			"count":     msg.Count,
			"timestamp": msg.Timestamp,
			"size":      msg.Width * msg.Height,
		}).Info(msg.Message)
		return nil
	})
	if err != nil {
		logrus.WithError(err).Fatal("new consumer")
	}
	if err := c.Start(); err != nil {
		logrus.WithError(err).Fatal("start consumer")
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("consumer is shutting down...")
	c.Stop()
}
