// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/heading_streamer/internal/config"
	"github.com/relabs-tech/heading_streamer/internal/heading"
	"github.com/relabs-tech/heading_streamer/internal/sensors"
	"github.com/relabs-tech/heading_streamer/internal/sentence"
	"github.com/relabs-tech/heading_streamer/internal/transport"
)

// HeadingPayload is the JSON mirror of each tick, published to MQTT for the
// console/web/display subscribers.
type HeadingPayload struct {
	Heading  float64 `json:"heading"`
	Sentence string  `json:"sentence"`
	Time     string  `json:"time"`
}

func RunHeadingSender() error {
	cfg := config.Get()

	cal := heading.Calibration{
		Inverted:       cfg.AxisInverted,
		MountOffsetDeg: cfg.MountOffsetDeg,
		DeclinationDeg: cfg.DeclinationDeg,
	}

	// MQTT is optional for the sender: it carries the telemetry mirror and,
	// in fused mode, the yaw input. With no broker configured and a local
	// source, the sender runs UDP/serial only.
	var client mqtt.Client
	if cfg.MQTTBroker != "" || cfg.Source == "fused" {
		broker := BrokerURL(cfg)
		clientID := cfg.MQTTClientIDSender
		if clientID == "" {
			clientID = "heading-sender"
		}
		opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return fmt.Errorf("sender: mqtt connect %s: %w", broker, token.Error())
		}
		defer client.Disconnect(250)
		log.Printf("sender: connected to MQTT broker at %s", broker)
	}

	// Heading reader: one of the two input modes, or the bench mock.
	var reader heading.Reader
	switch cfg.Source {
	case "mag":
		src, err := sensors.NewMagSource()
		if err != nil {
			return fmt.Errorf("sender: magnetometer init: %w", err)
		}
		reader = heading.NewMagReader(src, cal)
	case "fused":
		src, err := sensors.NewFusedYawSource(client, TopicYawFused(cfg))
		if err != nil {
			return fmt.Errorf("sender: fused yaw init: %w", err)
		}
		reader = heading.NewFusedReader(src, cal)
	case "mock":
		log.Println("sender: using mock magnetometer source")
		reader = heading.NewMagReader(heading.NewMockMagSource(), cal)
	default:
		return fmt.Errorf("sender: unknown SOURCE %q", cfg.Source)
	}

	// Sinks: UDP always, serial when configured. Init failures are fatal.
	udp, err := transport.NewUDPSink(cfg.UDPDestinations)
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	sinks := []transport.Sink{udp}
	if cfg.SerialPort != "" {
		baud := cfg.SerialBaudRate
		if baud == 0 {
			baud = 4800
		}
		ser, err := transport.NewSerialSink(cfg.SerialPort, uint(baud))
		if err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		sinks = append(sinks, ser)
	}
	defer func() {
		for _, s := range sinks {
			s.Close()
		}
	}()

	log.Printf("sender: streaming $%sHDT to %s every %d ms",
		cfg.TalkerID, strings.Join(cfg.UDPDestinations, ", "), cfg.SampleInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Println("sender: shutting down")
			return nil
		case t := <-ticker.C:
			deg, msg, err := sendOnce(reader, cfg.TalkerID, sinks)
			if err != nil {
				log.Printf("sender: %v", err)
				continue
			}

			if client != nil {
				payload, err := json.Marshal(HeadingPayload{
					Heading:  deg,
					Sentence: strings.TrimRight(string(msg), "\r\n"),
					Time:     t.Format(time.RFC3339),
				})
				if err != nil {
					log.Printf("sender: json marshal error: %v", err)
				} else {
					client.Publish(TopicHeading(cfg), 0, true, payload)
				}
			}

			log.Printf("%s tick: heading=%05.1f sent %d bytes to %d sink(s)",
				t.Format(time.RFC3339), deg, len(msg), len(sinks))
		}
	}
}

// sendOnce runs one tick: read a heading, frame it, hand it to every sink.
// A read failure skips the tick; send failures are logged and the remaining
// sinks still get the sentence.
func sendOnce(reader heading.Reader, talker string, sinks []transport.Sink) (float64, []byte, error) {
	deg, err := reader.Next()
	if err != nil {
		return 0, nil, fmt.Errorf("read error: %w", err)
	}

	msg := sentence.EncodeHDT(talker, deg)
	for _, s := range sinks {
		if err := s.Send(msg); err != nil {
			log.Printf("sender: send error: %v", err)
		}
	}
	return deg, msg, nil
}

// BrokerURL returns the configured MQTT broker, defaulting to the local one.
func BrokerURL(cfg *config.Config) string {
	if cfg.MQTTBroker != "" {
		return cfg.MQTTBroker
	}
	return "tcp://localhost:1883"
}

// TopicHeading returns the heading telemetry topic.
func TopicHeading(cfg *config.Config) string {
	if cfg.TopicHeading != "" {
		return cfg.TopicHeading
	}
	return "heading/true"
}

// TopicYawFused returns the upstream fused-yaw topic.
func TopicYawFused(cfg *config.Config) string {
	if cfg.TopicYawFused != "" {
		return cfg.TopicYawFused
	}
	return "heading/yaw/fused"
}
