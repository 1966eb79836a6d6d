package slack_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"foodagent/slack"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestNewClient(t *testing.T) {
	client := slack.NewClient("http://slack.com/webhook", &mockDoer{})
	must.NotNil(t, client, "expected non-nil client")
}

func TestPostMessage(t *testing.T) {
	tests := []struct {
		name    string
		doFunc  func(req *http.Request) (*http.Response, error)
		wantErr string
	}{
		{
			name: "success",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
			},
		},
		{
			name: "failure status",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request", Body: io.NopCloser(bytes.NewBufferString("invalid_payload\n"))}, nil
			},
			wantErr: "failed to post message: 400 Bad Request: invalid_payload",
		},
		{
			name: "do error",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("network error")
			},
			wantErr: "network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := slack.NewClient("http://example.com/webhook", &mockDoer{doFunc: tt.doFunc})
			err := client.PostMessage(context.Background(), "#orders", "Hello, kitchen!")
			if tt.wantErr == "" {
				should.NoError(t, err)
				return
			}
			should.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPostMessage_Payload(t *testing.T) {
	var got map[string]any
	client := slack.NewClient("http://example.com/webhook", &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		should.Equal(t, http.MethodPost, req.Method)
		should.Equal(t, "application/json", req.Header.Get("Content-Type"))
		must.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
	}})

	msg := "New order from St. Marien Klinikum\nOrder abc placed 2026-10-19 09:30\n\nTotal: €49.00"
	must.NoError(t, client.PostMessage(context.Background(), "#orders", msg))

	should.Equal(t, "#orders", got["channel"])
	should.Equal(t, msg, got["text"])
	should.Equal(t, "Food Ordering Assistant", got["username"])

	blocks, ok := got["blocks"].([]any)
	must.True(t, ok)
	must.Len(t, blocks, 2)
	header := blocks[0].(map[string]any)
	should.Equal(t, "header", header["type"])
	should.Equal(t, "New order from St. Marien Klinikum", header["text"].(map[string]any)["text"])
}
