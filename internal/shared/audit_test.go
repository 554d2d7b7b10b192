package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditLogValidate(t *testing.T) {
	assert.NoError(t, AuditLog{Action: "delivery.create", Entity: "delivery", EntityID: "1"}.validate())
	assert.Error(t, AuditLog{Action: "delivery.create", Entity: "delivery"}.validate())
	assert.Error(t, AuditLog{}.validate())
}

func TestAuditLoggerWithoutPool(t *testing.T) {
	var logger *AuditLogger
	assert.Error(t, logger.Record(context.Background(), AuditLog{Action: "a", Entity: "b", EntityID: "c"}))
	assert.Error(t, NewAuditLogger(nil).EnsureSchema(context.Background()))
}
