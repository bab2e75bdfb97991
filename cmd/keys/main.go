package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/quokkahub/quokkahub.go/common"
)

// Generates a keypair for a new identity. With LOGIN_SK set, prints a signed
// login event for that key instead, ready to be posted to /auth.
func main() {
	if sk := os.Getenv("LOGIN_SK"); sk != "" {
		if err := printLoginEvent(sk); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	nsec, _ := nip19.EncodePrivateKey(sk)
	npub, _ := nip19.EncodePublicKey(pk)

	fmt.Println("sk:  ", sk)
	fmt.Println("pk:  ", pk)
	fmt.Println("nsec:", nsec)
	fmt.Println("npub:", npub)
}

func printLoginEvent(sk string) error {
	if prefix, value, err := nip19.Decode(sk); err == nil && prefix == "nsec" {
		sk = value.(string)
	}
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		return err
	}
	evt := nostr.Event{
		PubKey:    pk,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      common.EventKindLogin,
		Tags:      nostr.Tags{},
		Content:   common.EventContentLogin,
	}
	if err := evt.Sign(sk); err != nil {
		return err
	}
	fmt.Printf("{\"event\": %s}\n", evt.String())
	return nil
}
