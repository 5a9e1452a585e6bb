package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"index_out_of_range":    IndexOutOfRange,
		"pin_already_reserved":  PinAlreadyReserved,
		"invalid_pin_operation": InvalidPinOperation,
		"double_release":        DoubleRelease,
		"already_constructed":   AlreadyConstructed,
		"not_started":           NotStarted,
		"no_data":               NoData,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfAndIs(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to ok")
	}
	if Of(Busy) != Busy {
		t.Fatal("bare code should map to itself")
	}
	e := New(PinAlreadyReserved, "acquire", "pin 13")
	if Of(e) != PinAlreadyReserved {
		t.Fatalf("Of(*E) = %q", Of(e))
	}
	if !errors.Is(e, PinAlreadyReserved) {
		t.Fatal("errors.Is should match the code")
	}
	if errors.Is(e, DoubleRelease) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if Of(errors.New("boom")) != Error {
		t.Fatal("foreign error should map to generic error")
	}
	if got := e.Error(); got != "acquire: pin_already_reserved: pin 13" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("bus fault")
	e := &E{C: Error, Op: "transfer", Err: cause}
	if !errors.Is(e, cause) {
		t.Fatal("cause lost through Unwrap")
	}
}
