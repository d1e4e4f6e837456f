package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeRoomUnavailable, status: http.StatusConflict, publicMsg: "room unavailable", detailsOK: true},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeStorage, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error"},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestCodeOfAndRetryable(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Fatalf("nil error should have no code")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped error should default to internal")
	}
	wrapped := fmt.Errorf("outer: %w", New(CodeInsufficientStock, "short"))
	if !IsCode(wrapped, CodeInsufficientStock) {
		t.Fatalf("expected code to survive fmt wrapping")
	}
	if IsRetryable(wrapped) {
		t.Fatalf("insufficient stock must not be retryable")
	}
	if !IsRetryable(Wrap(CodeStorage, stdErrors.New("conn reset"), "commit")) {
		t.Fatalf("storage errors must be retryable")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no room")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpIncludesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_reservations_active_room", TableName: "reservations", Message: "duplicate key value"}
	err := Wrap(CodeConflict, pgErr, "insert reservation")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected dump code %s got %s", CodeConflict, d.Code)
	}
	if d.Driver != "pgx" || d.SQLState != "23505" || d.Constraint != "uq_reservations_active_room" {
		t.Fatalf("expected postgres fields, got %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected chain of 2 got %d", len(d.Chain))
	}
}

func TestDumpFlagsRetryableSQLiteLock(t *testing.T) {
	err := Wrap(CodeStorage, stdErrors.New("database is locked"), "commit")

	d := Dump(err)
	if !d.Retryable {
		t.Fatalf("storage dump should be retryable")
	}
	if d.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", d.Driver)
	}
}

func TestDumpExtractsSQLiteConstraint(t *testing.T) {
	d := Dump(stdErrors.New("UNIQUE constraint failed: housekeeping_tasks.room_id"))
	if d.Constraint != "housekeeping_tasks.room_id" {
		t.Fatalf("unexpected constraint %q", d.Constraint)
	}
	if d.Code != "" || d.Retryable {
		t.Fatalf("untyped error should carry no code, got %+v", d)
	}
}
