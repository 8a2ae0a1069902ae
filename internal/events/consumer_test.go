package events

import (
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/soradaze/qmatch/internal/ai"
	"github.com/soradaze/qmatch/internal/matching"
	"github.com/soradaze/qmatch/internal/models"
	"github.com/soradaze/qmatch/internal/notify"
	"github.com/soradaze/qmatch/internal/storage"
)

func runNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()

	s, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("new nats server: %v", err)
	}

	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatal("nats server not ready")
	}

	t.Cleanup(func() {
		s.Shutdown()
		s.WaitForShutdown()
	})

	return s
}

func newTestConsumer(t *testing.T) (*Consumer, *storage.MemoryStorage, *nats.Conn) {
	t.Helper()

	s := runNATSServer(t)

	store := storage.NewMemoryStorage()
	logger := zaptest.NewLogger(t)
	matcher := matching.NewService(store, notify.NewNop(), logger)

	consumer, err := NewConsumer(s.ClientURL(), ai.NewMock(), matcher, logger)
	require.NoError(t, err)
	require.NoError(t, consumer.Start())
	t.Cleanup(consumer.Close)

	nc, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	return consumer, store, nc
}

func publishJSON(t *testing.T, nc *nats.Conn, subject string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, nc.Publish(subject, data))
	require.NoError(t, nc.Flush())
}

func TestConsumerThreadCreatedTriggersMatching(t *testing.T) {
	_, store, nc := newTestConsumer(t)

	store.AddProfile(&models.ResponderProfile{
		UserID:        "u1",
		Role:          models.RoleResponder,
		ExpertiseTags: []string{"web"},
	})

	publishJSON(t, nc, SubjectThreadCreated, ThreadCreated{
		ThreadID: "t1",
		Body:     "My react page in the browser is blank",
	})

	require.Eventually(t, func() bool {
		return len(store.Assignments()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	a := store.Assignments()[0]
	assert.Equal(t, "t1", a.ThreadID)
	assert.Equal(t, "u1", a.ResponderID)
	assert.Equal(t, models.AssignmentNotified, a.Status)

	require.Eventually(t, func() bool {
		return len(store.Notifications()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Contains(t, store.Notifications()[0].Body, "web")
}

func TestConsumerAnswerPostedRecomputesStats(t *testing.T) {
	_, store, nc := newTestConsumer(t)

	store.AddProfile(&models.ResponderProfile{
		UserID: "u1",
		Role:   models.RoleResponder,
	})
	store.AddMessage(&models.Message{
		ID: "m1", SenderID: "u1",
		Type: models.MessageAnswer, IsOriginal: true,
	})

	publishJSON(t, nc, SubjectAnswerPosted, AnswerPosted{ResponderID: "u1"})

	require.Eventually(t, func() bool {
		return store.Profile("u1").AnswerCount == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestConsumerIgnoresMalformedPayloads(t *testing.T) {
	_, store, nc := newTestConsumer(t)

	store.AddProfile(&models.ResponderProfile{
		UserID:        "u1",
		Role:          models.RoleResponder,
		ExpertiseTags: []string{"web"},
	})

	require.NoError(t, nc.Publish(SubjectThreadCreated, []byte("not json")))
	require.NoError(t, nc.Flush())

	// A valid event after the malformed one still gets handled.
	publishJSON(t, nc, SubjectThreadCreated, ThreadCreated{
		ThreadID: "t2",
		Body:     "css layout question about my browser",
	})

	require.Eventually(t, func() bool {
		return len(store.Assignments()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "t2", store.Assignments()[0].ThreadID)
}
