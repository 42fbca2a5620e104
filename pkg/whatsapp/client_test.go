package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "919876543210", NormalizePhone("9876543210"))
	assert.Equal(t, "919876543210", NormalizePhone("09876543210"))
	assert.Equal(t, "919876543210", NormalizePhone("+91 98765-43210"))
	assert.Equal(t, "4412345", NormalizePhone("4412345"))
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device1/send/message", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "secret", pass)

		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "919876543210@s.whatsapp.net", req.Phone)
		assert.Equal(t, "ready", req.Message)

		_, _ = w.Write([]byte(`{"success":true,"data":{"message_id":"m1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shop", "secret", "/device1/")
	resp, err := c.SendMessage(context.Background(), "9876543210", "ready")
	require.NoError(t, err)
	assert.Equal(t, "m1", resp.Data.MessageID)
}

func TestSendMessageGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "device offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", "", "").SendTextMessage(context.Background(), "9876543210", "hi")
	assert.ErrorContains(t, err, "503")
}
