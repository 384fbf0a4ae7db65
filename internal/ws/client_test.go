package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"drawguess/internal/game"
	"drawguess/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T, games GameService) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-test-secret")

	r := gin.New()
	r.GET("/ws", HandleWS(NewRouter(games), Options{EventsPerSec: 100, EventBurst: 100}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestHandleWSRejectsMissingToken(t *testing.T) {
	srv := newWSServer(t, new(mockGames))

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClientRoundTrip(t *testing.T) {
	games := new(mockGames)
	disconnected := make(chan string, 1)

	games.On("StartSingleplayerGame", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			conn := args.Get(1).(game.Conn)
			conn.Send(game.Message{Type: game.MsgStartSingleplayer, Content: game.TimerContent{TimeLeft: 60, TimeLimit: 60}})
		}).
		Return(60.0, nil)
	games.On("Disconnect", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			disconnected <- args.Get(1).(game.Conn).Login()
		}).
		Return(nil)

	srv := newWSServer(t, games)
	token, err := service.GenerateJWT("alice")
	require.NoError(t, err)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)

	require.NoError(t, ws.WriteJSON(map[string]string{"type": game.MsgStartSingleplayer}))

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, game.MsgStartSingleplayer, got.Type)
	assert.JSONEq(t, `{"current_time":60,"timer":60}`, string(got.Content))

	require.NoError(t, ws.Close())

	select {
	case login := <-disconnected:
		assert.Equal(t, "alice", login)
	case <-time.After(3 * time.Second):
		t.Fatal("disconnect was not reported")
	}
}

func TestClientSendAfterClose(t *testing.T) {
	c := &Client{login: "alice", send: make(chan []byte), done: make(chan struct{})}
	close(c.done)

	finished := make(chan struct{})
	go func() {
		c.Send(game.Message{Type: game.MsgState})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a closed client")
	}
}
