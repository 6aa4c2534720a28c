package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageOrdering(t *testing.T) {
	stages := Stages()
	assert.Len(t, stages, 8)
	assert.Equal(t, StageSubmission, stages[0])
	assert.Equal(t, StageCompleted, stages[len(stages)-1])

	for i, s := range stages {
		assert.Equal(t, i, s.Index(), "stage %s", s)
	}
}

func TestStageIndexUnknown(t *testing.T) {
	assert.Equal(t, -1, Stage("NOT_A_STAGE").Index())
}

func TestStageIsValid(t *testing.T) {
	for _, s := range Stages() {
		assert.True(t, s.IsValid(), "stage %s", s)
	}
	assert.False(t, Stage("").IsValid())
	assert.False(t, Stage("submission").IsValid())
}

func TestStageIsTerminal(t *testing.T) {
	for _, s := range Stages() {
		if s == StageCompleted {
			assert.True(t, s.IsTerminal())
		} else {
			assert.False(t, s.IsTerminal(), "stage %s", s)
		}
	}
}

func TestStagesReturnsCopy(t *testing.T) {
	stages := Stages()
	stages[0] = StageCompleted
	assert.Equal(t, StageSubmission, Stages()[0])
}
