package slicer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultRangeTopic is the topic the service subscribes to for elevation
// band updates when the config does not set one.
const DefaultRangeTopic = "cloudslice/range"

// RangeHandler is called for each band update received over MQTT. Updates
// may arrive in rapid bursts (a remote slider drag); the handler is
// expected to be cheap and feed the session's debounced preview path.
type RangeHandler func(minZ, maxZ float64)

// rangePayload is the JSON body of a band update message.
type rangePayload struct {
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// MQTTClient manages the MQTT connection and the band update subscription.
type MQTTClient struct {
	client       mqtt.Client
	config       *Config
	rangeHandler RangeHandler
	isConnected  bool
	mu           sync.RWMutex
}

// InitMQTT initializes the MQTT client with the provided configuration.
// If neither the MQTT_BROKER env var nor the config sets a broker, MQTT is
// disabled and this returns nil.
func InitMQTT(config *Config, handler RangeHandler) (*MQTTClient, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}

	if broker == "" {
		log.Println("MQTT disabled: MQTT_BROKER not set")
		return nil, nil
	}
	if config == nil {
		return nil, fmt.Errorf("MQTT enabled but no configuration provided")
	}

	client := &MQTTClient{
		config:       config,
		rangeHandler: handler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "cloudslice"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false)

	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)
	opts.SetReconnectingHandler(client.onReconnecting)

	client.client = mqtt.NewClient(opts)

	go client.connectWithRetry()

	return client, nil
}

// RangeTopic returns the configured band update topic.
func (c *MQTTClient) RangeTopic() string {
	if c.config != nil && c.config.MQTT.RangeTopic != "" {
		return c.config.MQTT.RangeTopic
	}
	return DefaultRangeTopic
}

// connectWithRetry attempts to connect to the MQTT broker with exponential
// backoff.
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Successfully connected to MQTT broker")
				c.setConnected(true)
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

func (c *MQTTClient) onConnect(client mqtt.Client) {
	topic := c.RangeTopic()
	log.Printf("[MQTT] connected, subscribing to %s", topic)
	c.setConnected(true)

	token := client.Subscribe(topic, 0, c.handleRangeMessage)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("[MQTT] error subscribing to %s: %v", topic, token.Error())
	} else {
		log.Printf("[MQTT] subscribed to %s", topic)
	}
}

// onConnectionLost is called when the MQTT connection drops.
// Auto-reconnect is enabled, so this is typically a transient event.
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("[MQTT] connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("[MQTT] reconnecting...")
}

// handleRangeMessage decodes a band update and forwards it to the handler.
func (c *MQTTClient) handleRangeMessage(client mqtt.Client, msg mqtt.Message) {
	var p rangePayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		log.Printf("[MQTT] bad range payload on %s: %v", msg.Topic(), err)
		return
	}

	handler := c.getRangeHandler()
	if handler != nil {
		handler(p.MinZ, p.MaxZ)
	}
}

func (c *MQTTClient) getRangeHandler() RangeHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rangeHandler
}

// IsConnected returns true if the MQTT client is connected.
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection.
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("Disconnecting from MQTT broker...")
		c.client.Disconnect(250)
		c.setConnected(false)
	}
}

// GetClient returns the underlying MQTT client for publishing.
func (c *MQTTClient) GetClient() mqtt.Client {
	return c.client
}

// newMQTTClientWithMock creates an MQTTClient with a provided mqtt.Client.
// Used by tests.
func newMQTTClientWithMock(client mqtt.Client, config *Config, handler RangeHandler) *MQTTClient {
	return &MQTTClient{
		client:       client,
		config:       config,
		rangeHandler: handler,
	}
}
