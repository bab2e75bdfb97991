package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quokkahub/quokkahub.go/db"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/quokkahub/quokkahub.go/rabbitmq"
)

// Replays the latest event of every invoice issued or updated between
// START_DATE and END_DATE (RFC3339) to the invoice exchange.
// DRY_RUN=true only lists the events.
func main() {

	c := &service.Config{}
	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		fmt.Printf("Error loading environment variables: %v\n", err)
		os.Exit(1)
	}
	logger := lib.Logger(c.LogFilePath)
	startDate, endDate, err := loadStartAndEndDateFromEnv()
	if err != nil {
		logger.Fatalf("Could not load start and end date from env %v", err)
	}
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{Dsn: c.SentryDSN}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}
	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	svc := &service.QuokkahubService{
		Config: c,
		DB:     dbConn,
		Logger: logger,
	}
	ctx := context.Background()
	events, err := svc.InvoiceEventsBetween(ctx, startDate, endDate)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("Found %d invoices", len(events))
	if os.Getenv("DRY_RUN") == "true" {
		for _, event := range events {
			logger.Infof("Would publish %s event of invoice %s", event.Type, event.Invoice.Address)
		}
		return
	}
	if c.RabbitMQUri == "" {
		logger.Fatal("RABBITMQ_URI is required")
	}

	rabbitmqClient, err := rabbitmq.Dial(c.RabbitMQUri,
		rabbitmq.WithLogger(logger),
		rabbitmq.WithInvoiceExchange(c.RabbitMQInvoiceExchange),
	)
	if err != nil {
		logger.Fatal(err)
	}
	// close the connection gently at the end of the runtime
	defer rabbitmqClient.Close()

	// the publisher returns once the replay channel is drained
	replay := func() (chan models.InvoiceEvent, func(), error) {
		ch := make(chan models.InvoiceEvent, len(events))
		for _, event := range events {
			ch <- event
		}
		close(ch)
		return ch, func() {}, nil
	}
	err = rabbitmqClient.StartPublishInvoiceEvents(ctx, replay, svc.EncodeInvoiceEventPayload)
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal(err)
	}
	logger.Infof("Published %d invoice events", len(events))
}

func loadStartAndEndDateFromEnv() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, os.Getenv("START_DATE"))
	if err != nil {
		return
	}
	end, err = time.Parse(time.RFC3339, os.Getenv("END_DATE"))
	return
}
