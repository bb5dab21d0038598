package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestStatusTestSuite(t *testing.T) {
	suite.Run(t, new(StatusTestSuite))
}

type StatusTestSuite struct {
	suite.Suite
}

func (s *StatusTestSuite) TestForwardTransitions() {
	assert.True(s.T(), StatusPending.CanAdvanceTo(StatusWaitingForAllowlist))
	assert.True(s.T(), StatusWaitingForAllowlist.CanAdvanceTo(StatusPublished))
	assert.True(s.T(), StatusPublished.CanAdvanceTo(StatusSent))
	assert.True(s.T(), StatusPending.CanAdvanceTo(StatusSent))
}

func (s *StatusTestSuite) TestNoBackwardTransitions() {
	assert.False(s.T(), StatusSent.CanAdvanceTo(StatusPublished))
	assert.False(s.T(), StatusPublished.CanAdvanceTo(StatusWaitingForAllowlist))
	assert.False(s.T(), StatusWaitingForAllowlist.CanAdvanceTo(StatusPending))
	assert.False(s.T(), StatusSent.CanAdvanceTo(StatusSent))
}

func (s *StatusTestSuite) TestFailurePath() {
	// Only a claimed batch may fail
	assert.True(s.T(), StatusWaitingForAllowlist.CanAdvanceTo(StatusFailed))
	assert.False(s.T(), StatusPending.CanAdvanceTo(StatusFailed))
	assert.False(s.T(), StatusPublished.CanAdvanceTo(StatusFailed))

	// Failed batches are re-claimed
	assert.True(s.T(), StatusFailed.CanAdvanceTo(StatusWaitingForAllowlist))
	assert.False(s.T(), StatusFailed.CanAdvanceTo(StatusPublished))
}
