package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/common"
)

const (
	// context keys set by the middlewares
	ContextKeyEvent    = "NostrEvent"
	ContextKeyIdentity = "Identity"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrEventIDMismatch  = errors.New("event id does not match its content")
	ErrEventExpired     = errors.New("event is too old or from the future")
	ErrNotALoginEvent   = errors.New("not a login event")
)

// VerifyEvent checks that the event id commits to the event content and that
// the id is signed by the event's pubkey. It returns the signer.
func VerifyEvent(evt nostr.Event) (Identity, error) {
	signer, err := ParseIdentity(evt.PubKey)
	if err != nil {
		return signer, err
	}
	if evt.GetID() != evt.ID {
		return signer, ErrEventIDMismatch
	}
	ok, err := evt.CheckSignature()
	if err != nil {
		return signer, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !ok {
		return signer, ErrInvalidSignature
	}
	return signer, nil
}

// VerifyLoginEvent verifies a signed login event created within maxAge of now.
func VerifyLoginEvent(evt nostr.Event, now time.Time, maxAge time.Duration) (Identity, error) {
	signer, err := VerifyEvent(evt)
	if err != nil {
		return signer, err
	}
	if evt.Kind != common.EventKindLogin || evt.Content != common.EventContentLogin {
		return signer, ErrNotALoginEvent
	}
	if err := checkFreshness(evt, now, maxAge); err != nil {
		return signer, err
	}
	return signer, nil
}

func checkFreshness(evt nostr.Event, now time.Time, maxAge time.Duration) error {
	if maxAge <= 0 {
		return nil
	}
	age := now.Sub(evt.CreatedAt.Time())
	if age > maxAge || age < -maxAge {
		return ErrEventExpired
	}
	return nil
}

// SignedEventMiddleware only lets requests through whose body is a correctly
// signed nostr event. The decoded event and its signer are stored on the context.
func SignedEventMiddleware(maxAge time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				c.Logger().Debugf("Unable to read event body: %v", err)
				return badEvent("bad event")
			}
			var evt nostr.Event
			if err := json.Unmarshal(body, &evt); err != nil {
				c.Logger().Debugf("Unable to unmarshal event: %v", err)
				return badEvent("bad event")
			}
			signer, err := VerifyEvent(evt)
			if err != nil {
				c.Logger().Debugf("Rejecting event %s from %s: %v", evt.ID, evt.PubKey, err)
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
					"error":   true,
					"code":    1,
					"message": "bad auth",
				})
			}
			if err := checkFreshness(evt, time.Now(), maxAge); err != nil {
				c.Logger().Debugf("Rejecting stale event %s from %s", evt.ID, evt.PubKey)
				return badEvent(err.Error())
			}
			c.Set(ContextKeyEvent, evt)
			c.Set(ContextKeyIdentity, signer)
			return next(c)
		}
	}
}

func badEvent(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    8,
		"message": msg,
	})
}
