package sensors

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/heading_streamer/internal/heading"
)

// fusedYaw is the JSON schema the upstream fusion stage publishes.
// yaw is in radians, counterclockwise positive.
type fusedYaw struct {
	Yaw  float64 `json:"yaw"`
	Time string  `json:"time"`
}

type fusedYawSource struct {
	mu      sync.RWMutex
	yaw     float64
	haveYaw bool
}

// NewFusedYawSource subscribes to the fused-yaw topic and serves the most
// recent value on each tick. Ticks before the first message fail, which the
// caller logs and skips.
func NewFusedYawSource(client mqtt.Client, topic string) (heading.YawSource, error) {
	src := &fusedYawSource{}

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f fusedYaw
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("fused yaw: unmarshal error: %v", err)
			return
		}
		src.mu.Lock()
		src.yaw = f.Yaw
		src.haveYaw = true
		src.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("fused yaw: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("fused yaw: subscribed to %s", topic)
	return src, nil
}

func (s *fusedYawSource) NextYaw() (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.haveYaw {
		return 0, fmt.Errorf("fused yaw: no sample received yet")
	}
	return s.yaw, nil
}
