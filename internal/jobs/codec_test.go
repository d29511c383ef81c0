package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodePasswordReset(t *testing.T) {
	payload := PasswordResetEmailPayload{
		UserID:     "user-1",
		Email:      "jo@example.com",
		Username:   "jo",
		ResetToken: "abc123",
		ExpiresAt:  time.Now().UTC().Add(time.Hour).Truncate(time.Second),
	}

	raw, err := EncodePayload(JobPasswordResetEmail, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	j, err := NewJob(JobPasswordResetEmail, raw, time.Time{})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if j.Status != JobPending || j.MaxTries != 5 {
		t.Fatalf("unexpected defaults: %+v", j)
	}

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, ok := decoded.(PasswordResetEmailPayload)
	if !ok {
		t.Fatalf("decoded to %T, want PasswordResetEmailPayload", decoded)
	}
	if got != payload {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, payload)
	}
}

func TestEncodeRejectsWrongPayloadType(t *testing.T) {
	_, err := EncodePayload(JobPasswordResetEmail, struct{ X int }{1})

	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("err = %v, want ErrPayloadTypeMismatch", err)
	}
}

func TestNewJobRejectsUnknownType(t *testing.T) {
	_, err := NewJob(JobType("mystery"), []byte(`{}`), time.Time{})

	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("err = %v, want ErrInvalidJobType", err)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	j := Job{Type: JobPasswordResetEmail}

	if _, err := DecodePayload(j); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("err = %v, want ErrInvalidJobPayload", err)
	}
}
