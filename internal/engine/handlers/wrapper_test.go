package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"stratus-server/pkg/api"
)

func TestWithPayload(t *testing.T) {
	var got api.DamagePayload
	h := WithPayload(func(_ Context, p api.DamagePayload) (Result, error) {
		got = p
		return Result{Msg: "ok"}, nil
	})

	res, err := h(Context{}, json.RawMessage(`{"targetId":"a","value":12,"piercing":true}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Msg != "ok" || got.TargetID != "a" || got.Value != 12 || !got.Piercing {
		t.Errorf("Payload not decoded: %+v", got)
	}

	_, err = h(Context{}, json.RawMessage(`{"value":12}`))
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("Expected validation error, got %v", err)
	}

	_, err = h(Context{}, json.RawMessage(`not json`))
	if err == nil || !strings.Contains(err.Error(), "invalid payload format") {
		t.Errorf("Expected format error, got %v", err)
	}
}

func TestWithEmptyPayload(t *testing.T) {
	called := false
	h := WithEmptyPayload(func(Context) (Result, error) {
		called = true
		return Result{Snapshot: true}, nil
	})
	res, err := h(Context{}, nil)
	if err != nil || !called || !res.Snapshot {
		t.Errorf("Empty handler not invoked correctly: %+v, %v", res, err)
	}
}
