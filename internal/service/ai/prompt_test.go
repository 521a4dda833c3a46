package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemInstructionDefaultProfile(t *testing.T) {
	got := BuildSystemInstruction(DefaultProfile(), "")

	assert.True(t, strings.HasPrefix(got, "Sos un asistente experto en problemas del hogar en Argentina."))
	assert.Contains(t, got, "describí lo que ves")
	assert.Contains(t, got, "Seguridad:\n- No des diagnósticos eléctricos ni de gas.")
}

func TestBuildSystemInstructionOverride(t *testing.T) {
	got := BuildSystemInstruction(DefaultProfile(), "  Respondé solo sobre plomería.  ")
	assert.Equal(t, "Respondé solo sobre plomería.", got)
}
