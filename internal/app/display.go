// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/heading_streamer/internal/config"
)

// RunDisplay shows the live heading on an SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("display: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("display: i2c open bus %q: %w", cfg.I2CBus, err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("display: ssd1306 init: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	var (
		mu          sync.RWMutex
		lastHeading HeadingPayload
		haveHeading bool
	)

	clientID := cfg.MQTTClientIDDisplay
	if clientID == "" {
		clientID = "heading-display"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(BrokerURL(cfg)).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", BrokerURL(cfg))

	token := client.Subscribe(TopicHeading(cfg), 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p HeadingPayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("display: heading unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastHeading = p
		haveHeading = true
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", TopicHeading(cfg))

	interval := cfg.DisplayUpdateInterval
	if interval <= 0 {
		interval = 500
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		mu.RLock()
		p := lastHeading
		have := haveHeading
		mu.RUnlock()

		line := "HDG  ---.-"
		if have {
			line = fmt.Sprintf("HDG  %05.1f", p.Heading)
		}

		if err := drawText(dev, line); err != nil {
			log.Printf("display: draw error: %v", err)
		}
	}

	return nil
}

func drawText(dev *ssd1306.Dev, line string) error {
	img := image1bit.NewVerticalLSB(dev.Bounds())
	drawer := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 36),
	}
	drawer.DrawString(line)
	return dev.Draw(dev.Bounds(), img, image.Point{})
}
