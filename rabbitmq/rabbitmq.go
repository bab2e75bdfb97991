package rabbitmq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/quokkahub/quokkahub.go/db/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool reuses the buffers invoice events are encoded into. A sequential
// publisher only ever holds one of them.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"
)

type (
	SubscribeToInvoiceEventsFunc = func() (events chan models.InvoiceEvent, unsubscribe func(), err error)
	EncodeInvoiceEventFunc       = func(ctx context.Context, w io.Writer, event models.InvoiceEvent) error
	// CommandHandler processes the body of one command message. A returned
	// error rejects the message without requeueing it.
	CommandHandler = func(ctx context.Context, body []byte) error
)

type Client interface {
	StartPublishInvoiceEvents(context.Context, SubscribeToInvoiceEventsFunc, EncodeInvoiceEventFunc) error
	ConsumeCommands(context.Context, CommandHandler) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	invoiceExchange  string
	commandExchange  string
	commandQueueName string
}

type ClientOption = func(client *DefaultClient)

func WithInvoiceExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.invoiceExchange = exchange
	}
}

func WithCommandExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.commandExchange = exchange
	}
}

func WithCommandQueueName(name string) ClientOption {
	return func(client *DefaultClient) {
		client.commandQueueName = name
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

func NewClient(amqpClient AMQPClient, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		invoiceExchange:  "quokkahub_invoice",
		commandExchange:  "quokkahub_command",
		commandQueueName: "quokkahub_command_consumer",
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// Dial connects to rabbitmq and returns a client on top of that connection.
func Dial(uri string, options ...ClientOption) (Client, error) {
	amqpClient, err := DialAMQP(uri)
	if err != nil {
		return nil, err
	}
	return NewClient(amqpClient, options...)
}

func (client *DefaultClient) Close() error { return client.amqpClient.Close() }

// StartPublishInvoiceEvents forwards every invoice event to the invoice
// exchange until ctx is done. The routing key is invoice.<event type>.
func (client *DefaultClient) StartPublishInvoiceEvents(ctx context.Context, subscribeFunc SubscribeToInvoiceEventsFunc, payloadFunc EncodeInvoiceEventFunc) error {
	err := client.amqpClient.ExchangeDeclare(
		client.invoiceExchange,
		// topic exchanges route on the routing key, consumers can bind to invoice.#
		"topic",
		// durable and not auto deleted, it survives broker restarts
		true,
		false,
		false,
		// wait for the broker to confirm the declaration
		false,
		nil,
	)
	if err != nil {
		return err
	}

	client.logger.Info("Starting rabbitmq publisher")

	events, unsubscribe, err := subscribeFunc()
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := client.publishInvoiceEvent(ctx, event, payloadFunc); err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func (client *DefaultClient) publishInvoiceEvent(ctx context.Context, event models.InvoiceEvent, payloadFunc EncodeInvoiceEventFunc) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	if err := payloadFunc(ctx, payload, event); err != nil {
		return err
	}

	key := fmt.Sprintf("invoice.%s", event.Type)

	err := client.amqpClient.PublishWithContext(ctx,
		client.invoiceExchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now(),
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		return err
	}

	client.logger.Debugf("Successfully published %s event of invoice %s to rabbitmq", event.Type, event.Invoice.Address)

	return nil
}

// ConsumeCommands hands every message of the command queue to handler and
// acks it on success. Failed messages are dropped, a signed command that was
// rejected once will be rejected again.
func (client *DefaultClient) ConsumeCommands(ctx context.Context, handler CommandHandler) error {
	deliveries, err := client.amqpClient.Listen(ctx, client.commandExchange, "command.#", client.commandQueueName)
	if err != nil {
		return err
	}

	client.logger.Info("Starting rabbitmq command consumer")
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("command deliveries channel closed")
			}
			if err := handler(ctx, delivery.Body); err != nil {
				client.logger.Errorf("Rejecting command message %s: %v", delivery.MessageId, err)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					captureErr(client.logger, nackErr)
				}
				continue
			}
			if err := delivery.Ack(false); err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
