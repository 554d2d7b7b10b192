package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(context.Background(), "not a dsn ::")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "platform/db")
}
