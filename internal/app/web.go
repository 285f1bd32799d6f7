package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/heading_streamer/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RunWeb serves the latest heading as JSON and streams updates over a
// websocket to any connected browsers.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu          sync.RWMutex
		lastHeading HeadingPayload
		haveHeading bool
		wsConns     = map[*websocket.Conn]bool{}
	)

	clientID := cfg.MQTTClientIDWeb
	if clientID == "" {
		clientID = "heading-web"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(BrokerURL(cfg)).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", BrokerURL(cfg))

	token := client.Subscribe(TopicHeading(cfg), 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p HeadingPayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("web: heading unmarshal error: %v", err)
			return
		}

		mu.Lock()
		lastHeading = p
		haveHeading = true
		for conn := range wsConns {
			if err := conn.WriteJSON(p); err != nil {
				log.Printf("web: websocket write error, dropping client: %v", err)
				conn.Close()
				delete(wsConns, conn)
			}
		}
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", TopicHeading(cfg))

	// JSON API endpoint: latest heading
	http.HandleFunc("/api/heading", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveHeading {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastHeading); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// Live heading stream
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}

		mu.Lock()
		wsConns[conn] = true
		if haveHeading {
			conn.WriteJSON(lastHeading)
		}
		mu.Unlock()
	})

	// Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	port := cfg.WebServerPort
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
