package monitoring

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

func TestHubBroadcastReachesClient(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	c := &client{send: make(chan []byte, 1)}
	if !h.add(c) {
		t.Fatal("add rejected client on a running hub")
	}

	created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	h.BroadcastAssessment(&risk.Assessment{
		Probability:    0.08,
		Level:          "Medium Risk",
		Recommendation: "Enhanced post-operative monitoring advised",
		Policy:         "A",
		CreatedAt:      created,
	})

	select {
	case payload := <-c.send:
		var event AssessmentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.RiskLevel != "Medium Risk" || event.Probability != 0.08 {
			t.Fatalf("unexpected event: %+v", event)
		}
		if !event.Timestamp.Equal(created) {
			t.Fatalf("expected timestamp %v, got %v", created, event.Timestamp)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached client")
	}

	h.remove(c)
	h.Stop()
}

func TestHubStopUnblocksClientPaths(t *testing.T) {
	// no Run loop: models the state after shutdown, when nothing drains
	// the register/unregister channels anymore
	h := NewHub(zap.NewNop())
	h.Stop()

	done := make(chan struct{})
	go func() {
		c := &client{send: make(chan []byte, 1)}
		if h.add(c) {
			t.Error("add accepted client on a stopped hub")
		}
		h.remove(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client registration blocked after hub stop")
	}
}

func TestHubStopIdempotent(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()
	h.Stop()
	h.Stop()
}
