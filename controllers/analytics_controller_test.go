package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"proplead/config"
)

func TestValidRollupSecret(t *testing.T) {
	config.AppConfig.RollupSecret = "shared-secret"

	assert.True(t, validRollupSecret("shared-secret"))
	assert.False(t, validRollupSecret("wrong-secret"))
	assert.False(t, validRollupSecret(""))

	// an unset secret rejects everything rather than matching empty input
	config.AppConfig.RollupSecret = ""
	assert.False(t, validRollupSecret(""))
}
