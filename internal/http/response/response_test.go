package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	"github.com/yungbote/materials-catalog/internal/platform/apierr"
)

func TestStatusMapsDomainCodes(t *testing.T) {
	cases := []struct {
		code   domainagg.ErrorCode
		status int
	}{
		{domainagg.CodeValidation, http.StatusBadRequest},
		{domainagg.CodeReference, http.StatusBadRequest},
		{domainagg.CodeNotFound, http.StatusNotFound},
		{domainagg.CodeUnauthorized, http.StatusUnauthorized},
		{domainagg.CodeForbidden, http.StatusForbidden},
		{domainagg.CodeConflict, http.StatusConflict},
		{domainagg.CodeStorage, http.StatusInternalServerError},
		{domainagg.CodeTransaction, http.StatusInternalServerError},
		{domainagg.CodeRetryable, http.StatusInternalServerError},
		{domainagg.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := domainagg.NewError(tc.code, "op", "detail", nil)
		if got, _ := Status(fmt.Errorf("wrapped: %w", err)); got != tc.status {
			t.Fatalf("%s: want=%d got=%d", tc.code, tc.status, got)
		}
	}
}

func TestStatusNeverLeaksInternalDetail(t *testing.T) {
	err := domainagg.Wrap(domainagg.CodeStorage, "catalog.create_material", errors.New("gcs: 403 bucket catalog-prod"))
	if _, msg := Status(err); msg != "internal server error" {
		t.Fatalf("leaked: %q", msg)
	}
	if _, msg := Status(errors.New("pq: something")); msg != "internal server error" {
		t.Fatalf("leaked: %q", msg)
	}
	if _, msg := Status(apierr.New(http.StatusServiceUnavailable, "x", errors.New("db down"))); msg != "internal server error" {
		t.Fatalf("leaked: %q", msg)
	}
}

func TestStatusUsesPublicMessage(t *testing.T) {
	err := domainagg.Wrap(domainagg.CodeReference, "op", errors.Join(errors.New("aggregate reference"), errors.New("category 9 does not exist")))
	status, msg := Status(err)
	if status != http.StatusBadRequest || msg != "category 9 does not exist" {
		t.Fatalf("status=%d msg=%q", status, msg)
	}
	status, msg = Status(apierr.BadRequest("invalid_id", "invalid material id"))
	if status != http.StatusBadRequest || msg != "invalid material id" {
		t.Fatalf("status=%d msg=%q", status, msg)
	}
}
