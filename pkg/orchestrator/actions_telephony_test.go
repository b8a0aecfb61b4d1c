package orchestrator

import (
	"context"
	"testing"
)

func TestVonageCallAction_MissingCredentialsFailsPrecondition(t *testing.T) {
	a := NewVonageCallAction("", "", "+15550000000")

	_, _, err := a.Run(context.Background(), `{"to":"+15551234567","say":"hello"}`)
	if err == nil {
		t.Fatal("expected an error when vonage credentials are missing")
	}
}

func TestVonageCallAction_MissingDestinationFailsPrecondition(t *testing.T) {
	a := NewVonageCallAction("key", "secret", "+15550000000")

	_, _, err := a.Run(context.Background(), `{"say":"hello"}`)
	if err == nil {
		t.Fatal("expected an error when no destination number is given")
	}
}

func TestVonageCallAction_ValidArgsStillFailExplicitly(t *testing.T) {
	a := NewVonageCallAction("key", "secret", "+15550000000")

	_, _, err := a.Run(context.Background(), `{"to":"+15551234567","say":"hello"}`)
	if err == nil {
		t.Fatal("expected vonage calling to fail explicitly since no client is available")
	}
}

func TestTwilioCallAction_InvalidArgsIsRejected(t *testing.T) {
	a := NewTwilioCallAction("AC_test", "authtoken", "+15550000000", "https://example.com/twiml")

	_, _, err := a.Run(context.Background(), `not json`)
	if err == nil {
		t.Fatal("expected invalid JSON args to be rejected")
	}
}

func TestTwilioCallAction_MissingDestinationIsRejected(t *testing.T) {
	a := NewTwilioCallAction("AC_test", "authtoken", "+15550000000", "https://example.com/twiml")

	_, _, err := a.Run(context.Background(), `{"say":"hello"}`)
	if err == nil {
		t.Fatal("expected a missing destination number to be rejected before any network call")
	}
}
