package line

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EstateLink/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func TestHTTPClientPush(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody pushRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("X-Line-Request-Id", "req-123")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret-token")

	res, err := client.Push(context.Background(), "U1234567890", "こんにちは")
	require.NoError(t, err)

	assert.Equal(t, "/v2/bot/message/push", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "U1234567890", gotBody.To)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "text", gotBody.Messages[0].Type)
	assert.Equal(t, "こんにちは", gotBody.Messages[0].Text)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "req-123", res.RequestID)
}

func TestHTTPClientPushAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "bad-token")

	res, err := client.Push(context.Background(), "U1", "hello")
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, err.Error(), "status=401")
}

func TestHTTPClientPrechecksAvoidIO(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()

	noToken := NewHTTPClient(srv.URL, "")
	_, err := noToken.Push(ctx, "U1", "hello")
	assert.ErrorIs(t, err, ErrMissingChannelToken)

	client := NewHTTPClient(srv.URL, "token")

	_, err = client.Push(ctx, "", "hello")
	assert.ErrorIs(t, err, ErrEmptyRecipient)

	_, err = client.Push(ctx, "U1", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestHTTPClientMulticast(t *testing.T) {
	var gotPath string
	var gotBody multicastRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "token")

	_, err := client.Multicast(context.Background(), []string{"U1", "U2"}, "notice")
	require.NoError(t, err)

	assert.Equal(t, "/v2/bot/message/multicast", gotPath)
	assert.Equal(t, []string{"U1", "U2"}, gotBody.To)
}

func TestHTTPClientMulticastRecipientCap(t *testing.T) {
	client := NewHTTPClient("http://unused.invalid", "token")

	recipients := make([]string, multicastLimit+1)
	for i := range recipients {
		recipients[i] = "U1"
	}

	_, err := client.Multicast(context.Background(), recipients, "notice")
	assert.ErrorIs(t, err, ErrTooManyRecipients)
}

func TestMockClientRecordsCalls(t *testing.T) {
	mock := NewMockClient()

	res, err := mock.Push(context.Background(), "U1", "hello")
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, 1, mock.CallCount())

	mock.FailNext = true
	_, err = mock.Push(context.Background(), "U2", "hello")
	assert.Error(t, err)

	_, err = mock.Push(context.Background(), "U3", "hello")
	assert.NoError(t, err)
}
