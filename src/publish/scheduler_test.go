package publish

import (
	"testing"
	"time"

	"github.com/isopod-iot/sealer/src/utils/config"
	monitor_publisher "github.com/isopod-iot/sealer/src/utils/monitoring/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

type SchedulerTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *SchedulerTestSuite) SetupSuite() {
	s.config = config.Default()
}

func (s *SchedulerTestSuite) newScheduler() (*Scheduler, *monitor_publisher.Monitor) {
	monitor := monitor_publisher.NewMonitor()
	scheduler := NewScheduler(s.config).WithMonitor(monitor)
	return scheduler, monitor
}

func (s *SchedulerTestSuite) TestLockIsExclusive() {
	scheduler, monitor := s.newScheduler()

	assert.True(s.T(), scheduler.tryLock())

	// Second tick while the first is in flight
	assert.False(s.T(), scheduler.tryLock())
	assert.Equal(s.T(), uint64(1), monitor.Report.Publisher.State.TicksSkipped.Load())

	scheduler.inFlight.Store(false)
	assert.True(s.T(), scheduler.tryLock())
}

func (s *SchedulerTestSuite) TestStaleLockIsOverridden() {
	scheduler, monitor := s.newScheduler()

	assert.True(s.T(), scheduler.tryLock())

	// Simulate a tick stuck for longer than the lock timeout
	scheduler.startedAt.Store(time.Now().Add(-s.config.Publisher.LockTimeout - time.Minute))

	assert.True(s.T(), scheduler.tryLock())
	assert.Equal(s.T(), uint64(1), monitor.Report.Publisher.State.StaleLockOverrides.Load())
	assert.Equal(s.T(), uint64(0), monitor.Report.Publisher.State.TicksSkipped.Load())

	// The override refreshed the start timestamp
	assert.WithinDuration(s.T(), time.Now(), scheduler.startedAt.Load(), time.Minute)
}

func (s *SchedulerTestSuite) TestOwnerIsUniquePerInstance() {
	first, _ := s.newScheduler()
	second, _ := s.newScheduler()

	assert.NotEmpty(s.T(), first.owner)
	assert.NotEqual(s.T(), first.owner, second.owner)
}
