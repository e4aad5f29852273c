package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/testutil"
)

type countingSessionObserver struct {
	open atomic.Int64
}

func (o *countingSessionObserver) LiveSessionOpened() { o.open.Add(1) }
func (o *countingSessionObserver) LiveSessionClosed() { o.open.Add(-1) }

func startLiveSearch(t *testing.T, client *testutil.MockYahooClient, origins []string, opts ...LiveSearchOption) *httptest.Server {
	t.Helper()
	handler := NewLiveSearchHandler(testutil.NewTestMarketService(t, client), 30*time.Millisecond, origins, opts...)
	srv := httptest.NewServer(http.HandlerFunc(handler.LiveSearch))
	t.Cleanup(srv.Close)
	return srv
}

func dialLiveSearch(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readLiveResponse(t *testing.T, conn *websocket.Conn) LiveSearchResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg LiveSearchResponse
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLiveSearchHandler(t *testing.T) {
	t.Run("streams results for a query", func(t *testing.T) {
		client := testutil.NewMockYahooClient()
		conn := dialLiveSearch(t, startLiveSearch(t, client, nil), nil)

		require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: "apple"}))

		msg := readLiveResponse(t, conn)
		assert.Equal(t, "apple", msg.Query)
		assert.Len(t, msg.Results, 2)
		assert.Empty(t, msg.Error)
	})

	// WHY: a burst of keystrokes must reach the provider as one request for
	// the final text.
	t.Run("debounces rapid input", func(t *testing.T) {
		client := testutil.NewMockYahooClient()
		conn := dialLiveSearch(t, startLiveSearch(t, client, nil), nil)

		for _, q := range []string{"a", "ap", "app", "appl"} {
			require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: q}))
		}

		msg := readLiveResponse(t, conn)
		assert.Equal(t, "appl", msg.Query)
		assert.Equal(t, []string{"appl"}, client.SearchQueries())
	})

	t.Run("cleared query returns empty results", func(t *testing.T) {
		client := testutil.NewMockYahooClient()
		conn := dialLiveSearch(t, startLiveSearch(t, client, nil), nil)

		require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: "apple"}))
		readLiveResponse(t, conn)

		require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: ""}))
		msg := readLiveResponse(t, conn)
		assert.Equal(t, "", msg.Query)
		assert.Equal(t, []model.Asset{}, msg.Results)
		assert.Len(t, client.SearchQueries(), 1)
	})

	t.Run("malformed message reports error and keeps connection", func(t *testing.T) {
		conn := dialLiveSearch(t, startLiveSearch(t, testutil.NewMockYahooClient(), nil), nil)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
		msg := readLiveResponse(t, conn)
		assert.Contains(t, msg.Error, "invalid message")

		require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: "apple"}))
		msg = readLiveResponse(t, conn)
		assert.Len(t, msg.Results, 2)
	})

	t.Run("provider failure is reported in the message", func(t *testing.T) {
		client := testutil.NewMockYahooClient()
		client.SearchFunc = func(_ context.Context, _ string) ([]model.Asset, error) {
			return nil, assert.AnError
		}
		conn := dialLiveSearch(t, startLiveSearch(t, client, nil), nil)

		require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: "apple"}))
		msg := readLiveResponse(t, conn)
		assert.NotEmpty(t, msg.Error)
		assert.Equal(t, []model.Asset{}, msg.Results)
	})

	t.Run("rejects disallowed origin", func(t *testing.T) {
		srv := startLiveSearch(t, testutil.NewMockYahooClient(), []string{"http://localhost:3000"})
		url := "ws" + strings.TrimPrefix(srv.URL, "http")

		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("accepts allowed origin", func(t *testing.T) {
		srv := startLiveSearch(t, testutil.NewMockYahooClient(), []string{"http://localhost:3000"})
		dialLiveSearch(t, srv, http.Header{"Origin": {"http://localhost:3000"}})
	})

	t.Run("tracks open sessions", func(t *testing.T) {
		observer := &countingSessionObserver{}
		srv := startLiveSearch(t, testutil.NewMockYahooClient(), nil, WithSessionObserver(observer))

		conn := dialLiveSearch(t, srv, nil)
		require.NoError(t, conn.WriteJSON(LiveSearchRequest{Query: "apple"}))
		readLiveResponse(t, conn)
		assert.Equal(t, int64(1), observer.open.Load())

		require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
		assert.Eventually(t, func() bool { return observer.open.Load() == 0 }, 2*time.Second, 10*time.Millisecond)
	})
}
