package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(PhaseResume, KindInvalidState).
		Coroutine(7).
		State("completed").
		Detail("requires state runnable").
		Build()

	msg := err.Error()
	for _, want := range []string{"[resume]", "invalid_state", "coroutine 7", "completed", "requires state runnable"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestErrorIsMatchesPhaseAndKind(t *testing.T) {
	err := AlreadyJoined(3)

	if !stderrors.Is(err, &Error{Phase: PhaseJoin, Kind: KindAlreadyJoined}) {
		t.Error("expected match on same phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseWait, Kind: KindAlreadyJoined}) {
		t.Error("unexpected match on different phase")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(PhaseShutdown, KindClosed).Cause(cause).Build()

	if !stderrors.Is(err, cause) {
		t.Error("expected cause in the chain")
	}
	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Errorf("Error() = %q, missing cause", err.Error())
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{AllocationFailed(1024, "too small"), PhaseSpawn, KindAllocation},
		{InvalidState(PhaseResume, 1, "running", "runnable"), PhaseResume, KindInvalidState},
		{AlreadyWaiting(1), PhaseWait, KindAlreadyWaiting},
		{AlreadyJoined(1), PhaseJoin, KindAlreadyJoined},
		{ReactorGone(1), PhaseWait, KindReactorGone},
		{NotCoroutine(PhaseWait, "wait"), PhaseWait, KindNotCoroutine},
		{Closed(PhaseSpawn, "pool"), PhaseSpawn, KindClosed},
		{PanicDropped(1), PhaseJoin, KindPanicDropped},
	}
	for _, tt := range tests {
		if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
			t.Errorf("%v: got phase=%s kind=%s, want %s/%s",
				tt.err, tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
		}
	}
}

func TestPanicErrorPreservesPayload(t *testing.T) {
	pe := NewPanic(5, "the payload")

	if pe.Value() != "the payload" {
		t.Fatalf("Value() = %v", pe.Value())
	}
	if pe.Coroutine() != 5 {
		t.Fatalf("Coroutine() = %d", pe.Coroutine())
	}
	if !strings.Contains(pe.Error(), "coroutine 5 panicked") {
		t.Errorf("Error() = %q", pe.Error())
	}
	if !strings.Contains(pe.ErrorWithStack(), "goroutine") {
		t.Error("expected a stack trace in ErrorWithStack")
	}
}

func TestPanicErrorUnwrapsErrorPayload(t *testing.T) {
	cause := stderrors.New("inner failure")
	pe := NewPanic(1, fmt.Errorf("wrapped: %w", cause))

	if !stderrors.Is(pe, cause) {
		t.Error("expected error payload to unwrap")
	}

	if pe2 := NewPanic(1, "not an error"); pe2.Unwrap() != nil {
		t.Error("non-error payload should not unwrap")
	}
}

func TestAsPanic(t *testing.T) {
	pe := NewPanic(2, 42)
	wrapped := New(PhaseJoin, KindPanicked).Cause(pe).Build()

	got, ok := AsPanic(wrapped)
	if !ok || got != pe {
		t.Fatal("expected to extract the captured panic from the chain")
	}
	if _, ok := AsPanic(stderrors.New("plain")); ok {
		t.Error("plain error should not extract")
	}
}

func TestDebugStringHandlesCycles(t *testing.T) {
	inner := stderrors.New("inner")
	pe := NewPanic(1, fmt.Errorf("outer: %w", inner))

	s := pe.DebugString()
	if !strings.Contains(s, "outer: inner") {
		t.Errorf("DebugString missing payload text: %q", s)
	}
	if !strings.Contains(s, "inner") {
		t.Errorf("DebugString missing unwrapped error: %q", s)
	}
}
