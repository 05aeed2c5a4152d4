package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshToken_ExpiredAt(t *testing.T) {
	exp := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	tok := &RefreshToken{ExpiresAt: exp}

	assert.False(t, tok.ExpiredAt(exp.Add(-time.Nanosecond)))
	assert.True(t, tok.ExpiredAt(exp))
	assert.True(t, tok.ExpiredAt(exp.Add(time.Second)))
}
