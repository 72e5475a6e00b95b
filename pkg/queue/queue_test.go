package queue

import (
	"encoding/json"
	"testing"
	"time"

	"optima/recsync/pkg/model"
)

func TestDerivedNames(t *testing.T) {
	if got := ProcessingName("recommendation_queue"); got != "recommendation_queue:processing" {
		t.Errorf("ProcessingName = %q", got)
	}
	if got := DeadName("recommendation_queue"); got != "recommendation_queue:dead" {
		t.Errorf("DeadName = %q", got)
	}
}

func encodeAt(t *testing.T, enqueuedAt int64) []byte {
	t.Helper()
	raw, err := json.Marshal(&model.Envelope{
		JobID:      "j1",
		Data:       &model.EnvelopeData{UserID: "u1", IDPID: "i1"},
		EnqueuedAt: enqueuedAt,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func TestIsStale(t *testing.T) {
	now := time.Unix(1700000000, 0)
	minAge := 10 * time.Minute

	cases := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"older than min age", encodeAt(t, now.Add(-11*time.Minute).Unix()), true},
		{"exactly min age", encodeAt(t, now.Add(-10*time.Minute).Unix()), true},
		{"fresh", encodeAt(t, now.Add(-1*time.Minute).Unix()), false},
		{"unstamped", encodeAt(t, 0), false},
		{"malformed", []byte("{not json"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isStale(c.raw, now, minAge); got != c.want {
				t.Errorf("isStale = %v, want %v", got, c.want)
			}
		})
	}
}
