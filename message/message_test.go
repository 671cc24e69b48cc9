package message

import (
	"testing"

	"orbitalcoms/comserr"
)

func TestFromMap_CoercesBooleans(t *testing.T) {
	m, err := FromMap(Fields{ABORT: true, QDM: false, STAB: true, LAUNCH: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Abort() || m.QDM() || !m.Stab() || m.Launch() {
		t.Fatalf("coercion mismatch: %+v", m)
	}
}

func TestFromMap_RejectsBadType(t *testing.T) {
	_, err := FromMap(Fields{ABORT: "yes", QDM: 0, STAB: 0, LAUNCH: 0})
	if comserr.Of(err) != comserr.Type {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestFromString_RoundTrip(t *testing.T) {
	armed := 1
	m := New(0, 0, 1, 1, &armed, map[string]any{"msg": "#1"})
	s := m.ToString()

	got, err := FromString(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Equal(got) {
		t.Fatalf("round trip mismatch: %s vs %s", s, got.ToString())
	}
}

func TestFromString_MissingFieldIsParseError(t *testing.T) {
	_, err := FromString(`{"ABORT":0,"QDM":0,"STAB":0}`)
	if comserr.Of(err) != comserr.Parse {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFromString_InvalidJSONIsParseError(t *testing.T) {
	_, err := FromString(`not json`)
	if comserr.Of(err) != comserr.Parse {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFromString_BadFlagTypeIsTypeError(t *testing.T) {
	_, err := FromString(`{"ABORT":"x","QDM":0,"STAB":0,"LAUNCH":0}`)
	if comserr.Of(err) != comserr.Type {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestToString_EmitsAllSixFieldsWithNulls(t *testing.T) {
	m := New(0, 0, 0, 0, nil, nil)
	s := m.ToString()
	for _, want := range []string{`"ABORT":0`, `"QDM":0`, `"STAB":0`, `"LAUNCH":0`, `"ARMED":null`, `"DATA":null`} {
		if !contains(s, want) {
			t.Fatalf("expected %q in %s", want, s)
		}
	}
}

func TestArmed_AbsentVsZero(t *testing.T) {
	m := New(0, 0, 0, 0, nil, nil)
	if _, present := m.Armed(); present {
		t.Fatalf("expected ARMED absent")
	}
	zero := 0
	m2 := New(0, 0, 0, 0, &zero, nil)
	v, present := m2.Armed()
	if !present || v {
		t.Fatalf("expected ARMED present and false, got present=%v value=%v", present, v)
	}
}

func TestConstruct_Dispatch(t *testing.T) {
	m1, err := Construct(`{"ABORT":0,"QDM":0,"STAB":0,"LAUNCH":0}`)
	if err != nil {
		t.Fatalf("string dispatch failed: %v", err)
	}
	m2, err := Construct(Fields{ABORT: 0, QDM: 0, STAB: 0, LAUNCH: 0})
	if err != nil {
		t.Fatalf("Fields dispatch failed: %v", err)
	}
	if !m1.Equal(m2) {
		t.Fatalf("dispatch results differ")
	}
	m3, err := Construct(m1)
	if err != nil || !m3.Equal(m1) {
		t.Fatalf("*Message dispatch failed: %v", err)
	}
	if _, err := Construct(42); comserr.Of(err) != comserr.Type {
		t.Fatalf("expected TypeError for unsupported input, got %v", err)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
