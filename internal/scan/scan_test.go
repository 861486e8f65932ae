package scan

import (
	"errors"
	"testing"
	"time"

	"server/internal/domain"
)

const testToken = "VENUE_CHECKIN_V1"

func TestVerifier(t *testing.T) {
	v := NewVerifier(testToken)
	if err := v.Verify(testToken); err != nil {
		t.Fatalf("Verify(valid) returned error: %v", err)
	}
	for _, payload := range []string{"", "venue_checkin_v1", testToken + "x", "https://example.com"} {
		if err := v.Verify(payload); !errors.Is(err, domain.ErrInvalidQRPayload) {
			t.Fatalf("Verify(%q) = %v, want ErrInvalidQRPayload", payload, err)
		}
	}
}

func newTestStore(onClose func(*Session)) *Store {
	return NewStore(NewVerifier(testToken), time.Minute, onClose)
}

func TestSubmitValidPayload(t *testing.T) {
	releases := 0
	st := newTestStore(func(*Session) { releases++ })

	s := st.Start("u1")
	if s.State != StateScanning {
		t.Fatalf("new session state = %q, want scanning", s.State)
	}

	got, err := st.Submit(s.ID, testToken)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if got.State != StateDecoded {
		t.Fatalf("state = %q, want decoded", got.State)
	}
	if releases != 1 {
		t.Fatalf("capture released %d times, want 1", releases)
	}
}

func TestSubmitInvalidPayload(t *testing.T) {
	st := newTestStore(nil)
	s := st.Start("u1")

	got, err := st.Submit(s.ID, "wrong")
	if !errors.Is(err, domain.ErrInvalidQRPayload) {
		t.Fatalf("Submit(bad) = %v, want ErrInvalidQRPayload", err)
	}
	if got.State != StateError {
		t.Fatalf("state = %q, want error", got.State)
	}
}

func TestDoubleSubmitReleasesOnce(t *testing.T) {
	releases := 0
	st := newTestStore(func(*Session) { releases++ })
	s := st.Start("u1")

	if _, err := st.Submit(s.ID, testToken); err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}
	got, err := st.Submit(s.ID, testToken)
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("second Submit = %v, want ErrSessionClosed", err)
	}
	if got.State != StateDecoded {
		t.Fatalf("second Submit flipped state to %q", got.State)
	}
	if releases != 1 {
		t.Fatalf("capture released %d times, want 1", releases)
	}
}

func TestCancel(t *testing.T) {
	releases := 0
	st := newTestStore(func(*Session) { releases++ })
	s := st.Start("u1")

	got, err := st.Cancel(s.ID)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if got.State != StateIdle {
		t.Fatalf("state = %q, want idle", got.State)
	}

	// Cancel after finish neither errors nor double-releases.
	if _, err := st.Cancel(s.ID); err != nil {
		t.Fatalf("second Cancel returned error: %v", err)
	}
	if releases != 1 {
		t.Fatalf("capture released %d times, want 1", releases)
	}
}

func TestCancelAfterSubmitKeepsTerminalState(t *testing.T) {
	st := newTestStore(nil)
	s := st.Start("u1")
	if _, err := st.Submit(s.ID, testToken); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	got, err := st.Cancel(s.ID)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if got.State != StateDecoded {
		t.Fatalf("Cancel rewrote terminal state to %q", got.State)
	}
}

func TestUnknownSession(t *testing.T) {
	st := newTestStore(nil)
	if _, err := st.Submit("missing", testToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Submit(unknown) = %v, want ErrSessionNotFound", err)
	}
	if _, err := st.Cancel("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Cancel(unknown) = %v, want ErrSessionNotFound", err)
	}
	if _, err := st.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get(unknown) = %v, want ErrSessionNotFound", err)
	}
}

func TestSweepExpiresAbandonedSessions(t *testing.T) {
	releases := 0
	st := newTestStore(func(*Session) { releases++ })
	now := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	s := st.Start("u1")

	now = now.Add(2 * time.Minute)
	if expired := st.Sweep(); expired != 1 {
		t.Fatalf("Sweep expired %d sessions, want 1", expired)
	}
	got, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get after sweep returned error: %v", err)
	}
	if got.State != StateError {
		t.Fatalf("expired session state = %q, want error", got.State)
	}
	if releases != 1 {
		t.Fatalf("capture released %d times, want 1", releases)
	}

	// A later sweep drops the finished session entirely.
	now = now.Add(10 * time.Minute)
	st.Sweep()
	if _, err := st.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after final sweep = %v, want ErrSessionNotFound", err)
	}
}
