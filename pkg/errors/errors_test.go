package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesCode(t *testing.T) {
	err := ThreadNotFound("alice_bob", nil)

	assert.True(t, Is(err, "THREAD_NOT_FOUND"))
	assert.False(t, Is(err, "NOT_FOUND"))
	assert.False(t, Is(fmt.Errorf("plain"), "THREAD_NOT_FOUND"))
	assert.False(t, Is(nil, "THREAD_NOT_FOUND"))
}

func TestFromFirestoreMapping(t *testing.T) {
	notFound := FromFirestore("get thread", status.Error(codes.NotFound, "missing"))
	assert.Equal(t, "NOT_FOUND", notFound.Code)
	assert.Equal(t, http.StatusNotFound, notFound.Status)

	denied := FromFirestore("update thread", status.Error(codes.PermissionDenied, "denied"))
	assert.Equal(t, "PERMISSION_DENIED", denied.Code)

	conflict := FromFirestore("thread", status.Error(codes.AlreadyExists, "exists"))
	assert.Equal(t, "CONFLICT", conflict.Code)

	other := FromFirestore("list threads", status.Error(codes.Unavailable, "down"))
	assert.Equal(t, "UNEXPECTED", other.Code)
}

func TestRateLimitedCarriesWait(t *testing.T) {
	err := RateLimited("slow down", 42*time.Second)

	assert.Equal(t, "RATE_LIMITED", err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Contains(t, err.Message, "slow down")
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Unexpected("Failed to append message", cause)

	assert.Equal(t, cause, err.Unwrap())
}
