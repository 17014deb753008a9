package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Actions carried in the push data payload. The mobile client switches
// notification text on these.
const (
	ActionTripUpdated       = "trip_updated"
	ActionTripStatusChanged = "trip_status_changed"
)

// FCMService handles Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(credentialsFile string) (*FCMService, error) {
	ctx := context.Background()

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// NewFCMServiceFromBase64 creates a new FCM service instance from
// base64-encoded credentials, for deployments where a credentials file
// can't be mounted.
func NewFCMServiceFromBase64(credentialsBase64 string) (*FCMService, error) {
	ctx := context.Background()

	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}

	opt := option.WithCredentialsJSON(credentialsJSON)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// SendTripUpdated notifies a device that a trip's details changed.
func (s *FCMService) SendTripUpdated(token, tripID, message string) error {
	return s.send(token, tripID, ActionTripUpdated, "Trip Updated", message)
}

// SendTripStatusChanged notifies a device that a trip moved to a new status.
func (s *FCMService) SendTripStatusChanged(token, tripID, status string) error {
	body := fmt.Sprintf("Trip status changed to %s", status)
	return s.send(token, tripID, ActionTripStatusChanged, "Trip Status Changed", body)
}

func (s *FCMService) send(token, tripID, action, title, body string) error {
	ctx := context.Background()

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"trip_id": tripID,
			"action":  action,
			"message": body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "trip_notifications",
			},
		},
	}

	response, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Printf("📲 FCM %s sent for trip %s: %s", action, tripID, response)
	return nil
}
