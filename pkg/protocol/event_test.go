package protocol

import "testing"

func TestEventEncodeDecode(t *testing.T) {
	ev := &EventMessage{
		Seq:        9,
		CallbackID: "cb-1f3a-12",
		Props: map[string]any{
			"text": "Buy milk",
		},
		RawEvent: map[string]any{
			"key":     "Enter",
			"ctrlKey": false,
		},
	}

	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.Seq != 9 {
		t.Errorf("Seq = %d, want 9", got.Seq)
	}
	if got.CallbackID != "cb-1f3a-12" {
		t.Errorf("CallbackID = %q, want cb-1f3a-12", got.CallbackID)
	}
	if got.Props["text"] != "Buy milk" {
		t.Errorf("Props[text] = %v, want Buy milk", got.Props["text"])
	}
	if got.RawEvent["key"] != "Enter" {
		t.Errorf("RawEvent[key] = %v, want Enter", got.RawEvent["key"])
	}
	if got.RawEvent["ctrlKey"] != false {
		t.Errorf("RawEvent[ctrlKey] = %v, want false", got.RawEvent["ctrlKey"])
	}
}

func TestEventEmptyMaps(t *testing.T) {
	ev := &EventMessage{Seq: 1, CallbackID: "cb-x"}

	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.Props != nil || got.RawEvent != nil {
		t.Errorf("empty maps should decode as nil, got props=%v raw=%v", got.Props, got.RawEvent)
	}
}

func TestControlRoundTrip(t *testing.T) {
	ct, pp := NewPing(123456)
	data := EncodeControl(ct, pp)

	gotCT, gotData, err := DecodeControl(data)
	if err != nil {
		t.Fatalf("DecodeControl: %v", err)
	}
	if gotCT != ControlPing {
		t.Errorf("control type = %v, want Ping", gotCT)
	}
	gotPP, ok := gotData.(*PingPong)
	if !ok || gotPP.Timestamp != 123456 {
		t.Errorf("payload = %#v, want PingPong{123456}", gotData)
	}

	ct, ci := NewClose(CloseShutdown, "server stopping")
	gotCT, gotData, err = DecodeControl(EncodeControl(ct, ci))
	if err != nil {
		t.Fatalf("DecodeControl(close): %v", err)
	}
	if gotCT != ControlClose {
		t.Errorf("control type = %v, want Close", gotCT)
	}
	gotCI, ok := gotData.(*CloseInfo)
	if !ok || gotCI.Reason != CloseShutdown || gotCI.Message != "server stopping" {
		t.Errorf("payload = %#v", gotData)
	}
}

func TestErrorMessageRoundTrip(t *testing.T) {
	em := NewError(ErrCodeStaleCallback, "callback not found: does-not-exist")

	got, err := DecodeErrorMessage(EncodeErrorMessage(em))
	if err != nil {
		t.Fatalf("DecodeErrorMessage: %v", err)
	}
	if got.Code != ErrCodeStaleCallback || got.Message != em.Message {
		t.Errorf("got %+v, want %+v", got, em)
	}
}

func TestHandshakeRoundTrip(t *testing.T) {
	hs := &HandshakeFrame{SessionID: "a1b2c3", Route: "/todos"}

	got, err := DecodeHandshake(EncodeHandshake(hs))
	if err != nil {
		t.Fatalf("DecodeHandshake: %v", err)
	}
	if got.SessionID != hs.SessionID || got.Route != hs.Route {
		t.Errorf("got %+v, want %+v", got, hs)
	}
}
