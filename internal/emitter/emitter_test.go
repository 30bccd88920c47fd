package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/types"
)

func startTestNatsServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host: "127.0.0.1",
		Port: -1, // random port
	})
	require.NoError(t, err)

	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second))
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSPublishesOnActionSubject(t *testing.T) {
	ns := startTestNatsServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)
	inbox, err := sub.SubscribeSync("test.stake")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	em, err := NewNATS(ns.ClientURL(), "test.")
	require.NoError(t, err)
	t.Cleanup(func() { _ = em.Close() })
	require.Equal(t, "test.stake", em.Subject("stake"))

	resp := types.NewResponse("stake").AddAttribute("amount", "10")
	require.NoError(t, em.Emit(context.Background(), Event{ID: "ev1", Height: 5, Sender: "alice", Response: resp}))

	msg, err := inbox.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var got struct {
		ID       string `json:"id"`
		Height   uint64 `json:"height"`
		Response struct {
			Action     string            `json:"action"`
			Attributes []types.Attribute `json:"attributes"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	require.Equal(t, "ev1", got.ID)
	require.Equal(t, uint64(5), got.Height)
	require.Equal(t, "stake", got.Response.Action)
	require.Contains(t, got.Response.Attributes, types.Attribute{Key: "amount", Value: "10"})
}

func TestNATSEmitAfterClose(t *testing.T) {
	ns := startTestNatsServer(t)

	em, err := NewNATS(ns.ClientURL(), "")
	require.NoError(t, err)
	require.Equal(t, "lockdrop.claim", em.Subject("claim"))
	em.conn.Close()

	err = em.Emit(context.Background(), Event{ID: "ev1", Response: types.NewResponse("claim")})
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, em.Close())
}

func TestLogEmitterWritesResponse(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWithWriter("info", "json", &buf)
	t.Cleanup(func() { logger.InitializeWithWriter("info", "console", os.Stdout) })

	em := NewLog()
	require.NoError(t, em.Emit(context.Background(), Event{ID: "ev2", Height: 9, Sender: "bob", Response: types.NewResponse("fund")}))
	require.NoError(t, em.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "ev2", line["eventId"])
	require.Equal(t, "fund", line["response"].(map[string]any)["action"])
}
