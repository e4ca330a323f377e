package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kitchenpos/internal/config"
	"kitchenpos/internal/logger"
)

const (
	// StatusExchange receives every committed order status change
	StatusExchange = "order_status_fanout"
	// NotificationsQueue is bound to StatusExchange and read by the notification subscriber
	NotificationsQueue = "order_notifications_queue"
)

// ErrNotConnected is returned while the broker is unreachable. A reconnect
// runs in the background and later calls succeed once it is done.
var ErrNotConnected = errors.New("rabbitmq not connected")

type dialFunc func() (*amqp091.Connection, *amqp091.Channel, error)

// Connection wraps a RabbitMQ connection with reconnection logic
type Connection struct {
	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	reconnecting bool

	dial       dialFunc
	logger     *logger.Logger
	url        string
	maxRetries int
	backoff    time.Duration

	// ctx is cancelled by Close and stops background reconnects
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new RabbitMQ connection and declares the topology
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := newConnection(cfg.RabbitMQURL(), log)
	c.dial = c.dialBroker

	if err := c.connect(ctx); err != nil {
		c.cancel()
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

func newConnection(url string, log *logger.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		logger:     log,
		url:        url,
		maxRetries: 5,
		backoff:    2 * time.Second,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// connect dials with backoff. mu is only taken to install the result.
func (c *Connection) connect(ctx context.Context) error {
	var err error

	for i := 0; i < c.maxRetries; i++ {
		var conn *amqp091.Connection
		var ch *amqp091.Channel
		if conn, ch, err = c.dial(); err == nil {
			c.install(conn, ch)
			return nil
		}

		if i < c.maxRetries-1 {
			waitTime := time.Duration(i+1) * c.backoff
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", waitTime),
				"", err, nil)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", c.maxRetries, err)
}

// install swaps in a fresh connection unless a live one is already there
// or the Connection was closed meanwhile
func (c *Connection) install(conn *amqp091.Connection, ch *amqp091.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil || !c.isClosed() {
		ch.Close()
		conn.Close()
		return
	}
	c.close()
	c.conn = conn
	c.channel = ch
}

func (c *Connection) dialBroker() (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	if err := setupTopology(channel); err != nil {
		c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "", err, nil)
		channel.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, channel, nil
}

// setupTopology declares the status fanout exchange and the notifications queue
func setupTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		StatusExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", StatusExchange, err)
	}

	_, err = ch.QueueDeclare(
		NotificationsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s queue: %w", NotificationsQueue, err)
	}

	err = ch.QueueBind(
		NotificationsQueue, // queue name
		"",                 // routing key (ignored for fanout)
		StatusExchange,     // exchange
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind %s queue: %w", NotificationsQueue, err)
	}
	return nil
}

// Channel returns the live channel. When the connection has dropped it
// starts a background reconnect and returns ErrNotConnected without waiting.
func (c *Connection) Channel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed() {
		c.reconnectAsync()
		return nil, ErrNotConnected
	}
	return c.channel, nil
}

// Reconnect returns a live channel, blocking until the connection is
// re-established or the retries are exhausted
func (c *Connection) Reconnect(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	if !c.isClosed() {
		ch := c.channel
		c.mu.Unlock()
		return ch, nil
	}
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to reconnect: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed() {
		return nil, ErrNotConnected
	}
	return c.channel, nil
}

// reconnectAsync must be called with mu held. At most one reconnect runs at a time.
func (c *Connection) reconnectAsync() {
	if c.reconnecting || c.ctx.Err() != nil {
		return
	}
	c.reconnecting = true

	go func() {
		err := c.connect(c.ctx)

		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()

		if err != nil {
			c.logger.Error("rabbitmq_reconnect_failed", "Background reconnect gave up", "", err, nil)
			return
		}
		c.logger.Info("rabbitmq_reconnected", "Reconnected to RabbitMQ", "", nil)
	}()
}

// Close closes the connection
func (c *Connection) Close() error {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosed()
}

func (c *Connection) isClosed() bool {
	return c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed()
}
