package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
)

func TestClientIDFromContext_PresentIdentity(t *testing.T) {
	ctx := config.WithIdentity(context.Background(), config.ClientIdentity{ID: "abc", Origin: "transport_session"})
	assert.Equal(t, "abc", clientIDFromContext(ctx))
}

func TestClientIDFromContext_NoIdentitySet(t *testing.T) {
	assert.Equal(t, "", clientIDFromContext(context.Background()))
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, outcomeOf(nil))
	assert.Equal(t, OutcomeFailure, outcomeOf(errors.New("boom")))
}

func TestErrString(t *testing.T) {
	assert.Equal(t, "", errString(nil))
	assert.Equal(t, "boom", errString(errors.New("boom")))
}

func TestLogToolCalled_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogToolCalled(context.Background(), "run_search", 0, nil)
		LogToolCalled(context.Background(), "run_search", 0, errors.New("boom"))
	})
}

func TestLogResourceRead_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogResourceRead(context.Background(), "/splunk/indexes/main", 0, nil)
	})
}

func TestLogPromptRendered_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogPromptRendered(context.Background(), "investigate", 0, nil)
	})
}
