package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushMessage is the payload posted to the notification webhook.
type PushMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// NotificationService delivers push messages through a configured
// webhook endpoint (Expo-compatible payload shape).
type NotificationService struct {
	WebhookURL string
	client     *http.Client
}

func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		WebhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SendPushNotification posts one message for the given push token.
func (ns *NotificationService) SendPushNotification(pushToken, title, body string, data map[string]interface{}) error {
	if pushToken == "" {
		return fmt.Errorf("push token is empty")
	}
	if ns.WebhookURL == "" {
		return fmt.Errorf("notification webhook is not configured")
	}

	message := PushMessage{
		To:    pushToken,
		Title: title,
		Body:  body,
		Data:  data,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	resp, err := ns.client.Post(ns.WebhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push webhook returned status %d", resp.StatusCode)
	}

	return nil
}
