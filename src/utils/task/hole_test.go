package task

import (
	"testing"
	"time"

	"github.com/isopod-iot/sealer/src/utils/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestHoleTestSuite(t *testing.T) {
	suite.Run(t, new(HoleTestSuite))
}

type HoleTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *HoleTestSuite) SetupSuite() {
	s.config = config.Default()
	s.config.StopTimeout = 5 * time.Second
}

func (s *HoleTestSuite) TestFlushOnBatchSize() {
	input := make(chan int, 10)
	flushed := make(chan []int, 10)

	hole := NewHole[int](s.config, "hole-test").
		WithBatchSize(3).
		WithInputChannel(input).
		// Interval long enough to never fire during the test
		WithOnFlush(time.Hour, func(batch []int) error {
			flushed <- batch
			return nil
		}).
		WithBackoff(time.Second, time.Second)

	assert.NoError(s.T(), hole.Start())

	input <- 1
	input <- 2
	input <- 3

	select {
	case batch := <-flushed:
		assert.Equal(s.T(), []int{1, 2, 3}, batch)
	case <-time.After(5 * time.Second):
		assert.Fail(s.T(), "batch not flushed")
	}

	hole.Stop()
	close(input)
	hole.StopWait()
}

func (s *HoleTestSuite) TestFlushOnClose() {
	input := make(chan string, 10)
	flushed := make(chan []string, 10)

	hole := NewHole[string](s.config, "hole-test").
		WithBatchSize(100).
		WithInputChannel(input).
		WithOnFlush(time.Hour, func(batch []string) error {
			flushed <- batch
			return nil
		}).
		WithBackoff(time.Second, time.Second)

	assert.NoError(s.T(), hole.Start())

	input <- "a"
	input <- "b"

	// Closing the input drains whatever is queued
	close(input)
	hole.StopWait()

	select {
	case batch := <-flushed:
		assert.Equal(s.T(), []string{"a", "b"}, batch)
	default:
		assert.Fail(s.T(), "pending data not flushed on close")
	}
}
