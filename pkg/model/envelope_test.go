package model

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeEnvelope(t *testing.T) {
	raw := []byte(`{"data":{"userId":"u1","idpId":"i1"}}`)

	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Data.UserID != "u1" {
		t.Errorf("userId = %q, want u1", env.Data.UserID)
	}
	if env.Data.IDPID != "i1" {
		t.Errorf("idpId = %q, want i1", env.Data.IDPID)
	}
	if env.JobID != "" {
		t.Errorf("jobId = %q, want empty (decode must not stamp)", env.JobID)
	}
}

func TestDecodeEnvelopeIgnoresExtraFields(t *testing.T) {
	raw := []byte(`{"data":{"userId":"u1","idpId":"i1","priority":9},"source":"api"}`)

	if _, err := DecodeEnvelope(raw); err != nil {
		t.Fatalf("decode with extra fields failed: %v", err)
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `this is not json`},
		{"empty", ``},
		{"missing data", `{"jobId":"j1"}`},
		{"data null", `{"data":null}`},
		{"missing userId", `{"data":{"idpId":"i1"}}`},
		{"missing idpId", `{"data":{"userId":"u1"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tc.raw)); err == nil {
				t.Errorf("decode %q succeeded, want error", tc.raw)
			}
		})
	}
}

func TestEncodeStampsIdentity(t *testing.T) {
	env := &Envelope{Data: &EnvelopeData{UserID: "u1", IDPID: "i1"}}

	raw, err := env.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if env.JobID == "" {
		t.Fatal("encode did not stamp jobId")
	}
	if env.EnqueuedAt == 0 {
		t.Fatal("encode did not stamp enqueuedAt")
	}

	// 两条结构相同的任务编码后字节必须不同（jobId 不同）
	other := &Envelope{Data: &EnvelopeData{UserID: "u1", IDPID: "i1"}}
	otherRaw, err := other.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if bytes.Equal(raw, otherRaw) {
		t.Error("two encoded envelopes are byte-identical, ack by value would be ambiguous")
	}

	// 编码结果可被解码还原
	decoded, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode of encoded envelope failed: %v", err)
	}
	if decoded.JobID != env.JobID {
		t.Errorf("jobId roundtrip = %q, want %q", decoded.JobID, env.JobID)
	}
}

func TestEncodeKeepsExistingStamps(t *testing.T) {
	env := &Envelope{
		JobID:      "fixed-id",
		Data:       &EnvelopeData{UserID: "u1", IDPID: "i1"},
		EnqueuedAt: 1700000000,
	}

	raw, err := env.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out["jobId"] != "fixed-id" {
		t.Errorf("jobId = %v, want fixed-id", out["jobId"])
	}
	if out["enqueuedAt"] != float64(1700000000) {
		t.Errorf("enqueuedAt = %v, want 1700000000", out["enqueuedAt"])
	}
}

func TestEnvelopeAge(t *testing.T) {
	now := time.Unix(1700003600, 0)

	env := &Envelope{EnqueuedAt: 1700000000}
	if got := env.Age(now); got != time.Hour {
		t.Errorf("age = %v, want 1h", got)
	}

	unstamped := &Envelope{}
	if got := unstamped.Age(now); got != 0 {
		t.Errorf("age of unstamped envelope = %v, want 0", got)
	}
}

func TestGoalSkillRef(t *testing.T) {
	g := &Goal{Skill: "s1", SkillID: "legacy"}
	if g.SkillRef() != "s1" {
		t.Errorf("skill ref = %q, want s1", g.SkillRef())
	}

	g = &Goal{SkillID: "s2"}
	if g.SkillRef() != "s2" {
		t.Errorf("skill ref = %q, want s2", g.SkillRef())
	}
}
