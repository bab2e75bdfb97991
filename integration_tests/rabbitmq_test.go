package integration_tests

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/quokkahub/quokkahub.go/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RabbitMQTestSuite struct {
	TestSuite
	service      *service.QuokkahubService
	client       rabbitmq.AMQPClient
	cancelRoutes context.CancelFunc
	creditor     *testIdentity
	debtor       *testIdentity
}

func (suite *RabbitMQTestSuite) SetupSuite() {
	rabbitmqUri, ok := os.LookupEnv("RABBITMQ_URI")
	if !ok {
		suite.T().Skip("RABBITMQ_URI not set")
	}
	svc, err := QuokkahubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	svc.Config.RabbitMQUri = rabbitmqUri
	svc.RabbitMQClient, err = rabbitmq.Dial(rabbitmqUri,
		rabbitmq.WithLogger(svc.Logger),
		rabbitmq.WithInvoiceExchange(svc.Config.RabbitMQInvoiceExchange),
		rabbitmq.WithCommandExchange(svc.Config.RabbitMQCommandExchange),
		rabbitmq.WithCommandQueueName(svc.Config.RabbitMQCommandQueue),
	)
	if err != nil {
		log.Fatalf("Error dialing rabbitmq: %v", err)
	}
	suite.client, err = rabbitmq.DialAMQP(rabbitmqUri)
	if err != nil {
		log.Fatalf("Error dialing rabbitmq: %v", err)
	}
	suite.service = svc
	suite.wireEcho(svc)

	ctx, cancel := context.WithCancel(context.Background())
	suite.cancelRoutes = cancel
	go svc.RabbitMQClient.StartPublishInvoiceEvents(ctx, svc.SubscribeInvoiceEvents, svc.EncodeInvoiceEventPayload)
	go svc.RabbitMQClient.ConsumeCommands(ctx, svc.ProcessCommandMessage)

	suite.creditor = newTestIdentity(&suite.TestSuite)
	suite.debtor = newTestIdentity(&suite.TestSuite)
	suite.login(suite.creditor)
	suite.login(suite.debtor)
	suite.deposit(suite.debtor, 1000)
}

func (suite *RabbitMQTestSuite) TestPublishesInvoiceEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	deliveries, err := suite.client.Listen(ctx, suite.service.Config.RabbitMQInvoiceExchange, "invoice.#", "test_quokkahub_invoice_listener", rabbitmq.WithAutoAck(true), rabbitmq.WithAutoDelete(true))
	assert.NoError(suite.T(), err)

	invoice := suite.addInvoice(suite.creditor, suite.debtor, 25, "rabbit")

	select {
	case delivery := <-deliveries:
		assert.Equal(suite.T(), "invoice.issued", delivery.RoutingKey)
		payload := service.InvoiceEventPayload{}
		assert.NoError(suite.T(), json.Unmarshal(delivery.Body, &payload))
		assert.Equal(suite.T(), invoice.Address, payload.Address)
	case <-ctx.Done():
		suite.T().Fatal("no invoice event published")
	}
}

func (suite *RabbitMQTestSuite) TestConsumesCommands() {
	invoice := suite.addInvoice(suite.creditor, suite.debtor, 30, "rabbit-command")
	pay := suite.debtor.sign(&suite.TestSuite, common.EventKindCommand, common.EventContentPay, nostr.Tags{
		{"a", invoice.Address},
		{"amount", "30"},
	})
	body, err := json.Marshal(pay)
	assert.NoError(suite.T(), err)

	ctx := context.Background()
	assert.NoError(suite.T(), suite.client.ExchangeDeclare(suite.service.Config.RabbitMQCommandExchange, "topic", true, false, false, false, nil))
	assert.NoError(suite.T(), suite.client.PublishWithContext(ctx, suite.service.Config.RabbitMQCommandExchange, "command.pay", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}))

	assert.Eventually(suite.T(), func() bool {
		stored, err := suite.service.FindInvoice(ctx, invoice.Address)
		return err == nil && stored.Balance == 0
	}, 10*time.Second, 100*time.Millisecond)
}

func (suite *RabbitMQTestSuite) TearDownSuite() {
	if suite.cancelRoutes != nil {
		suite.cancelRoutes()
	}
	if suite.client != nil {
		suite.client.Close()
	}
	if suite.service != nil && suite.service.RabbitMQClient != nil {
		suite.service.RabbitMQClient.Close()
	}
}

func TestRabbitMQTestSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQTestSuite))
}
