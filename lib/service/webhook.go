package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
)

var webhookClient = &http.Client{Timeout: 10 * time.Second}

func (svc *QuokkahubService) StartWebhookSubscription(ctx context.Context, url string) {
	svc.setDefaults()
	svc.Logger.Infof("Starting webhook subscription with webhook url %s", url)
	events := make(chan models.InvoiceEvent, 100)
	subId := svc.InvoicePubSub.Subscribe(common.InvoiceTopicAll, events)
	defer svc.InvoicePubSub.Unsubscribe(subId, common.InvoiceTopicAll)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			svc.postToWebhook(ctx, event, url)
		}
	}
}

func (svc *QuokkahubService) postToWebhook(ctx context.Context, event models.InvoiceEvent, url string) {
	payload := new(bytes.Buffer)
	if err := svc.EncodeInvoiceEventPayload(ctx, payload, event); err != nil {
		svc.Logger.Error(err)
		return
	}
	body := payload.Bytes()

	retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := webhookClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("webhook status code was %d, body: %s", resp.StatusCode, msg)
		}
		return nil
	}, backoff.WithContext(retry, ctx))
	if err != nil {
		svc.Logger.Errorf("Could not deliver %s event of invoice %s to webhook: %v", event.Type, event.Invoice.Address, err)
	}
}
