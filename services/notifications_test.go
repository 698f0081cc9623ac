package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPushNotification(t *testing.T) {
	var received PushMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ns := NewNotificationService(server.URL)
	err := ns.SendPushNotification("ExponentPushToken[abc]", "Task due soon", "Call back Jane", map[string]interface{}{"task_id": 3})
	require.NoError(t, err)

	assert.Equal(t, "ExponentPushToken[abc]", received.To)
	assert.Equal(t, "Task due soon", received.Title)
	assert.Equal(t, "Call back Jane", received.Body)
}

func TestSendPushNotificationWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ns := NewNotificationService(server.URL)
	err := ns.SendPushNotification("token", "t", "b", nil)
	assert.Error(t, err)
}

func TestSendPushNotificationValidation(t *testing.T) {
	ns := NewNotificationService("http://example.com/hook")
	assert.Error(t, ns.SendPushNotification("", "t", "b", nil))

	unconfigured := NewNotificationService("")
	assert.Error(t, unconfigured.SendPushNotification("token", "t", "b", nil))
}
