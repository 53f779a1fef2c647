package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gwillem/mello/pkg/bridge"
)

type BridgeCommand struct {
	SourceOptions
	Broker   string `long:"broker" description:"MQTT broker URL, e.g. tcp://localhost:1883 (default from config)"`
	Topic    string `long:"topic" description:"MQTT topic (default from config)"`
	ClientID string `long:"client-id" description:"MQTT client ID (default from config)"`
	Hz       int    `long:"hz" default:"30" description:"Publish rate"`
}

func (c *BridgeCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mc := bridge.MQTTConfig{
		Broker:   cfg.MQTT.Broker,
		Topic:    cfg.MQTT.Topic,
		ClientID: cfg.MQTT.ClientID,
		Logf:     log.Printf,
	}
	if c.Broker != "" {
		mc.Broker = c.Broker
	}
	if c.Topic != "" {
		mc.Topic = c.Topic
	}
	if c.ClientID != "" {
		mc.ClientID = c.ClientID
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := c.open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	forwardLogs(ctx, src)

	sink, err := bridge.NewMQTT(mc)
	if err != nil {
		return err
	}
	defer sink.Close()

	log.Printf("Publishing poses to %s on %q at %d Hz", mc.Broker, mc.Topic, c.Hz)

	var lastErr string
	err = bridge.Run(ctx, src, sink, c.Hz, func(err error) {
		// Repeated identical failures are logged once
		if msg := err.Error(); msg != lastErr {
			log.Printf("Publish failed: %v", err)
			lastErr = msg
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bridge: %w", err)
	}
	return nil
}
