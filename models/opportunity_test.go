package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageLabel(t *testing.T) {
	assert.Equal(t, "Lead", StageLabel(1))
	assert.Equal(t, "Negotiation", StageLabel(4))
	assert.Equal(t, "Unknown", StageLabel(0))
	assert.Equal(t, "Unknown", StageLabel(6))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Open", StatusLabel(1))
	assert.Equal(t, "Won", StatusLabel(2))
	assert.Equal(t, "Lost", StatusLabel(3))
	assert.Equal(t, "Unknown", StatusLabel(7))
}
