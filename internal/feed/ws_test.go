package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
)

// newWSTestServer serves the given envelope lines as text messages and
// then closes the connection with a normal close frame.
func newWSTestServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, line := range lines {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		conn.WriteControl(websocket.CloseMessage, msg, deadline)
		// Wait for the client's close response so the frames land
		// before the TCP connection drops.
		conn.SetReadDeadline(time.Now().Add(time.Second))
		conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + srv.URL[len("http"):]
}

func TestWSSource_StreamsEnvelopes(t *testing.T) {
	srv := newWSTestServer(t, depositLine)
	source := NewWSSource(wsURL(srv), nil)

	ch, err := source.Subscribe(context.Background())
	require.NoError(t, err)

	item := <-ch
	require.NoError(t, item.Err)
	dep, ok := item.Event.(*domain.DepositEvent)
	require.True(t, ok)
	assert.Equal(t, "0xdai", dep.Reserve)
	assert.Equal(t, "1000", dep.Amount.String())

	// Drain the close notification; the channel must end without any
	// context cancellation.
	for range ch {
	}
}

func TestWSSource_ReleasesGoroutinesOnServerClose(t *testing.T) {
	srv := newWSTestServer(t)
	source := NewWSSource(wsURL(srv), nil)

	before := runtime.NumGoroutine()

	ch, err := source.Subscribe(context.Background())
	require.NoError(t, err)
	for range ch {
	}

	// The context is never cancelled here: the helper goroutines must
	// end with the read loop, not linger on ctx.Done.
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+1
	}, 2*time.Second, 50*time.Millisecond)
}
