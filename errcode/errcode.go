package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Busy           Code = "busy"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	UnknownDevice  Code = "unknown_device"
	HALNotReady    Code = "hal_not_ready"
	Timeout        Code = "timeout"
	NoData         Code = "no_data"

	// Pin ownership.
	IndexOutOfRange     Code = "index_out_of_range"
	PinAlreadyReserved  Code = "pin_already_reserved"
	InvalidPinOperation Code = "invalid_pin_operation"
	DoubleRelease       Code = "double_release"
	AlreadyConstructed  Code = "already_constructed"

	// SPI transactions.
	NotStarted Code = "not_started"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against a bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E for op with a human-readable message.
func New(c Code, op, msg string) *E {
	return &E{C: c, Op: op, Msg: msg}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
