package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeagenthq/codeagent/internal/types"
)

func TestExitCodeForMapsKnownErrors(t *testing.T) {
	assert.Equal(t, types.ExitConfigurationError, exitCodeFor(types.NewConfigurationError("bad flag")))
	assert.Equal(t, types.ExitGeneralFailure, exitCodeFor(assertAnyError{}))
}

type assertAnyError struct{}

func (assertAnyError) Error() string { return "boom" }
