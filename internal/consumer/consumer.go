// Package consumer reads detection messages back from NSQ.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"teddywatch/internal/config"
	"teddywatch/internal/dao"
	"teddywatch/pkg/log"
)

const channel = "teddywatch-watch"

type HandlerFunc func(msg *dao.DetectionMessage) error

type Consumer struct {
	conf     config.NSQConfig
	consumer *nsq.Consumer
	logger   *logrus.Entry
	handler  HandlerFunc
}

func NewConsumer(conf config.NSQConfig, handler HandlerFunc) (*Consumer, error) {
	logger := log.Component(context.Background(), "consumer")

	nsqConf := nsq.NewConfig()
	nsqConf.MsgTimeout = time.Minute
	nsqConf.MaxInFlight = 10
	nsqConf.MaxAttempts = 2

	consumer, err := nsq.NewConsumer(conf.Topic, channel, nsqConf)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelWarning)

	c := &Consumer{
		conf:     conf,
		consumer: consumer,
		logger:   logger,
		handler:  handler,
	}

	consumer.AddHandler(c)

	return c, nil
}

// HandleMessage implements nsq.Handler. A returned error requeues the
// message until MaxAttempts.
func (c *Consumer) HandleMessage(message *nsq.Message) error {
	c.logger.Debugf("Received NSQ message: %s", string(message.Body))
	return c.handle(message.Body)
}

func (c *Consumer) handle(body []byte) error {
	var msg dao.DetectionMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// malformed payloads will never succeed, drop them
		c.logger.WithError(err).Error("Failed to unmarshal NSQ message")
		return nil
	}
	return c.handler(&msg)
}

func (c *Consumer) Start() error {
	c.logger.Info("Starting NSQ consumer...")

	if err := c.consumer.ConnectToNSQD(c.conf.NSQDAddr); err != nil {
		return fmt.Errorf("failed to connect to NSQ: %w", err)
	}
	return nil
}

// Stop blocks until in-flight messages are handled.
func (c *Consumer) Stop() {
	c.consumer.Stop()
	<-c.consumer.StopChan
}
