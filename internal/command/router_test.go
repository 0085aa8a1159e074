package command

import (
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestDispatchRoutesByType(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	var got SetFrequency
	var gotID string
	r.Register(TypeSetFrequency, func(id string, payload json.RawMessage) (interface{}, error) {
		gotID = id
		if err := Decode(payload, &got); err != nil {
			return nil, err
		}
		return "ok", nil
	})

	env, result, err := r.Dispatch([]byte(`{"type":"set.frequency","id":"a1","payload":{"hz":523.25}}`))
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != TypeSetFrequency || gotID != "a1" || got.Hz == nil || *got.Hz != 523.25 || result != "ok" {
		t.Errorf("unexpected dispatch: env=%+v id=%q payload=%+v result=%v", env, gotID, got, result)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	env, _, err := r.Dispatch([]byte(`{"type":"note.on","id":"x"}`))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if env.ID != "x" {
		t.Errorf("expected envelope id to survive, got %q", env.ID)
	}
}

func TestDispatchMalformedEnvelope(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	if _, _, err := r.Dispatch([]byte(`{"type":`)); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
}

func TestDecodeStrict(t *testing.T) {
	var v SetVolume
	cases := map[string]string{
		"empty":    ``,
		"unknown":  `{"fraction":0.5,"gain":2}`,
		"type":     `{"fraction":"half"}`,
		"trailing": `{"fraction":0.5}{"fraction":0.1}`,
	}
	for name, payload := range cases {
		if err := Decode(json.RawMessage(payload), &v); !errors.Is(err, ErrBadPayload) {
			t.Errorf("%s: expected ErrBadPayload, got %v", name, err)
		}
	}
	v = SetVolume{}
	if err := Decode(json.RawMessage(`{"fraction":0.25}`), &v); err != nil || v.Fraction == nil || *v.Fraction != 0.25 {
		t.Errorf("valid payload: v=%+v err=%v", v, err)
	}
}

func TestDecodeLeavesAbsentKeysNil(t *testing.T) {
	var v SetParameters
	if err := Decode(json.RawMessage(`{"frequency":880,"wave":"square"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Frequency == nil || v.Wave == nil {
		t.Fatalf("expected present keys decoded, got %+v", v)
	}
	if v.Volume != nil {
		t.Errorf("expected absent volume to stay nil, got %v", *v.Volume)
	}

	// An explicit zero is a value, not an absence.
	v = SetParameters{}
	if err := Decode(json.RawMessage(`{"frequency":880,"volume":0,"wave":"sine"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Volume == nil || *v.Volume != 0 {
		t.Errorf("expected explicit zero volume, got %+v", v.Volume)
	}
}

func TestMissingWrapsBadPayload(t *testing.T) {
	err := Missing("hz")
	if !errors.Is(err, ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
	if err.Error() != `bad command payload: missing "hz"` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTypes(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	noop := func(string, json.RawMessage) (interface{}, error) { return nil, nil }
	r.Register(TypeStart, noop)
	r.Register(TypeStop, noop)
	r.Register(TypeSetVolume, noop)
	types := r.Types()
	if len(types) != 3 || types[0] != TypeStart || types[1] != TypeStop || types[2] != TypeSetVolume {
		t.Errorf("unexpected types %v", types)
	}
}
