package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers an OTP code to a mobile number. The transport is an
// external collaborator; failures are reported, never swallowed.
type Notifier interface {
	SendOTP(mobile, code string) error
}

// TwilioNotifier sends OTP codes over SMS via Twilio.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier creates a Twilio-backed notifier.
func NewTwilioNotifier(accountSID, authToken, from string) (*TwilioNotifier, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioNotifier{
		client: client,
		from:   from,
	}, nil
}

// SendOTP sends the verification code as an SMS.
func (t *TwilioNotifier) SendOTP(mobile, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("+91%s", mobile))
	params.SetBody(fmt.Sprintf("Your SeatLink verification code is %s. Valid for 5 minutes. Do not share it with anyone.", code))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send OTP SMS: %v", err)
		return err
	}

	log.Printf("✅ OTP SMS sent! SID: %s", *resp.Sid)
	return nil
}

// LogNotifier writes the code to the application log instead of sending
// an SMS. Used when Twilio is not configured (local development).
type LogNotifier struct{}

// SendOTP logs the code.
func (l *LogNotifier) SendOTP(mobile, code string) error {
	log.Printf("📱 [dev notifier] OTP for %s: %s", mobile, code)
	return nil
}
