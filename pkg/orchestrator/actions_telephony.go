package orchestrator

import (
	"context"
	"fmt"

	twilio "github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioCallArgs is the JSON shape the agent's function call must supply.
type TwilioCallArgs struct {
	To  string `json:"to"`
	Say string `json:"say"`
}

// TwilioCallAction places an outbound call through Twilio's Voice API,
// grounded on lookatitude-beluga-ai's inclusion of twilio-go as a real
// client dependency in the pack.
type TwilioCallAction struct {
	client   *twilio.RestClient
	fromNum  string
	twimlURL string
}

func NewTwilioCallAction(accountSID, authToken, fromNum, twimlURL string) *TwilioCallAction {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioCallAction{client: client, fromNum: fromNum, twimlURL: twimlURL}
}

func (a *TwilioCallAction) Run(ctx context.Context, rawArgs string) (string, bool, error) {
	var args TwilioCallArgs
	if err := ParseArgs(rawArgs, &args); err != nil {
		return "", false, fmt.Errorf("invalid twilio call args: %w", err)
	}
	if args.To == "" {
		return "", false, fmt.Errorf("twilio call requires a destination number")
	}

	params := &twilioapi.CreateCallParams{}
	params.SetTo(args.To)
	params.SetFrom(a.fromNum)
	params.SetUrl(a.twimlURL)

	call, err := a.client.Api.CreateCall(params)
	if err != nil {
		return "", false, fmt.Errorf("twilio call failed: %w", err)
	}

	sid := ""
	if call.Sid != nil {
		sid = *call.Sid
	}
	return fmt.Sprintf("call placed to %s (sid=%s)", args.To, sid), false, nil
}

// VonageCallArgs mirrors TwilioCallArgs for the Vonage variant.
type VonageCallArgs struct {
	To  string `json:"to"`
	Say string `json:"say"`
}

// VonageCallAction is a hand-rolled precondition-checked placeholder: no
// Vonage Go SDK exists anywhere in the retrieved example pack, so this
// stays a structured stub (same shape as the real action, failing loudly if
// ever actually invoked) rather than inventing a fabricated client.
type VonageCallAction struct {
	apiKey    string
	apiSecret string
	fromNum   string
}

func NewVonageCallAction(apiKey, apiSecret, fromNum string) *VonageCallAction {
	return &VonageCallAction{apiKey: apiKey, apiSecret: apiSecret, fromNum: fromNum}
}

func (a *VonageCallAction) Run(ctx context.Context, rawArgs string) (string, bool, error) {
	var args VonageCallArgs
	if err := ParseArgs(rawArgs, &args); err != nil {
		return "", false, fmt.Errorf("invalid vonage call args: %w", err)
	}
	if a.apiKey == "" || a.apiSecret == "" {
		return "", false, fmt.Errorf("vonage call action missing credentials precondition")
	}
	if args.To == "" {
		return "", false, fmt.Errorf("vonage call requires a destination number")
	}
	return "", false, fmt.Errorf("vonage calling is not implemented: no vonage client is available")
}
