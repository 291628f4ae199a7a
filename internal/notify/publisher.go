package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/fburn/internal/model"
)

// Defaults used when the config leaves the broker topology empty.
const (
	DefaultExchange = "fburn"
	DefaultQueue    = "budget-alerts"

	publishTimeout = 5 * time.Second
	maxAttempts    = 3
)

// Publisher sends budget alerts to a durable direct exchange. The
// connection is re-established when a publish fails on a dropped link.
type Publisher struct {
	url          string
	exchangeName string
	queueName    string
	log          *logrus.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	sleep func(time.Duration)
	now   func() time.Time
}

// NewPublisher dials the broker and declares the exchange and queue.
func NewPublisher(url, exchangeName, queueName string, log *logrus.Logger) (*Publisher, error) {
	if exchangeName == "" {
		exchangeName = DefaultExchange
	}
	if queueName == "" {
		queueName = DefaultQueue
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Publisher{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
		sleep:        time.Sleep,
		now:          time.Now,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, p.exchangeName, p.queueName); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	p.conn = conn
	p.channel = channel
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on a direct exchange.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends a persistent JSON message for alert.
func (p *Publisher) Publish(ctx context.Context, alert model.BudgetAlert) error {
	body, err := NewAlertMessage(alert, p.now()).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := exponentialBackoff(attempt - 1)
			p.log.Warnf("AMQP publish failed (%v), retrying in %s", lastErr, wait)
			p.sleep(wait)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if p.channel == nil || p.channel.IsClosed() {
			p.reset()
			if err := p.connect(); err != nil {
				lastErr = err
				continue
			}
		}

		lastErr = p.publish(ctx, body)
		if lastErr == nil {
			p.log.WithFields(logrus.Fields{
				"budget_id": alert.BudgetID,
				"level":     alert.Level,
				"month":     alert.Month,
				"exchange":  p.exchangeName,
				"queue":     p.queueName,
			}).Info("published budget alert")
			return nil
		}
		if !isConnectionError(lastErr) {
			return lastErr
		}
		p.reset()
	}
	return fmt.Errorf("publish alert after %d attempts: %w", maxAttempts, lastErr)
}

func (p *Publisher) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (p *Publisher) reset() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// exponentialBackoff returns 1s doubled per attempt, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return 30 * time.Second
	}
	d := time.Second << attempt
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "closed", "eof", "broken pipe", "reset by peer"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
