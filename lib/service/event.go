package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/security"
)

// HandleCommandEvent runs the invoice operation a signed command event asks
// for. The signer of the event is the caller of the operation. Every event is
// processed at most once, successful or not.
func (svc *QuokkahubService) HandleCommandEvent(ctx context.Context, evt nostr.Event) (string, error) {
	signer, err := security.VerifyEvent(evt)
	if err != nil {
		svc.Logger.Errorf("Signature is not valid for event %s: %v", evt.ID, err)
		return "", err
	}
	if evt.Kind != common.EventKindCommand {
		return "", fmt.Errorf("%w: unsupported kind %d", ErrInvalidCommand, evt.Kind)
	}

	if err := svc.InsertEvent(ctx, evt); err != nil {
		if isUniqueViolation(err) {
			svc.Logger.Errorf("Duplicate event %s encountered", evt.ID)
			return "", ErrEventReplayed
		}
		svc.Logger.Errorf("Failed to insert nostr event %s into db: %v", evt.ID, err)
		return "", err
	}

	switch evt.Content {
	case common.EventContentIssue:
		return svc.handleIssueCommand(ctx, signer, evt)
	case common.EventContentPay:
		return svc.handlePayCommand(ctx, signer, evt)
	case common.EventContentConfirm:
		return svc.handleConfirmCommand(ctx, signer, evt)
	default:
		svc.Logger.Errorf("Unimplemented event content: %s", evt.Content)
		return "", fmt.Errorf("%w: unknown content %q", ErrInvalidCommand, evt.Content)
	}
}

// ProcessCommandMessage decodes a command event delivered by the message broker.
func (svc *QuokkahubService) ProcessCommandMessage(ctx context.Context, body []byte) error {
	var evt nostr.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	msg, err := svc.HandleCommandEvent(ctx, evt)
	if err != nil {
		return err
	}
	svc.Logger.Infof("Processed command event %s: %s", evt.ID, msg)
	return nil
}

func (svc *QuokkahubService) handleIssueCommand(ctx context.Context, signer security.Identity, evt nostr.Event) (string, error) {
	debtor, err := security.ParseIdentity(tagValue(evt, "p"))
	if err != nil {
		return "", fmt.Errorf("%w: p tag: %v", ErrInvalidCommand, err)
	}
	amount, err := strconv.ParseUint(tagValue(evt, "amount"), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: amount tag: %v", ErrInvalidCommand, err)
	}
	req := IssueInvoiceRequest{
		Debtor:    debtor,
		Balance:   amount,
		Memo:      tagValue(evt, "memo"),
		ProjectID: tagValue(evt, "project"),
	}
	if nonceTag := tagValue(evt, "nonce"); nonceTag != "" {
		nonce, err := strconv.ParseUint(nonceTag, 10, 8)
		if err != nil {
			return "", fmt.Errorf("%w: nonce tag: %v", ErrInvalidCommand, err)
		}
		bump := uint8(nonce)
		req.Nonce = &bump
	}
	invoice, err := svc.Issue(ctx, signer, req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("address: %s", invoice.Address), nil
}

func (svc *QuokkahubService) handlePayCommand(ctx context.Context, signer security.Identity, evt nostr.Event) (string, error) {
	ref, err := svc.refFromTag(ctx, evt)
	if err != nil {
		return "", err
	}
	amount, err := strconv.ParseUint(tagValue(evt, "amount"), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: amount tag: %v", ErrInvalidCommand, err)
	}
	result, err := svc.Pay(ctx, signer, ref, amount)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("paid: %d, balance: %d", result.Transferred, result.Invoice.Balance), nil
}

func (svc *QuokkahubService) handleConfirmCommand(ctx context.Context, signer security.Identity, evt nostr.Event) (string, error) {
	ref, err := svc.refFromTag(ctx, evt)
	if err != nil {
		return "", err
	}
	invoice, err := svc.ConfirmSettlement(ctx, signer, ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("confirmed_at: %d", invoice.ConfirmedAt), nil
}

func (svc *QuokkahubService) refFromTag(ctx context.Context, evt nostr.Event) (InvoiceRef, error) {
	addr := tagValue(evt, "a")
	if addr == "" {
		return InvoiceRef{}, fmt.Errorf("%w: missing a tag", ErrInvalidCommand)
	}
	invoice, err := svc.FindInvoice(ctx, addr)
	if err != nil {
		return InvoiceRef{}, err
	}
	return RefFor(invoice)
}

func tagValue(evt nostr.Event, name string) string {
	for _, tag := range evt.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1]
		}
	}
	return ""
}

func (svc *QuokkahubService) InsertEvent(ctx context.Context, evt nostr.Event) error {
	eventData := models.Event{
		EventID:    evt.ID,
		FromPubkey: evt.PubKey,
		Kind:       int64(evt.Kind),
		Content:    evt.Content,
		CreatedAt:  evt.CreatedAt.Time().Unix(),
	}
	_, err := svc.DB.NewInsert().Model(&eventData).Exec(ctx)
	return err
}
