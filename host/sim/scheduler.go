package sim

// Timer represents a scheduled event on the simulated cycle clock
type Timer struct {
	WakeTime uint64
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by WakeTime
type Scheduler struct {
	timerList *Timer
}

// Schedule adds a timer to the schedule
func (s *Scheduler) Schedule(t *Timer) {
	if s.timerList == nil || t.WakeTime < s.timerList.WakeTime {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Dispatch runs every timer with WakeTime <= now, in WakeTime order
func (s *Scheduler) Dispatch(now uint64) {
	for s.timerList != nil && s.timerList.WakeTime <= now {
		timer := s.timerList
		s.timerList = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references

		if timer.Handler(timer) == SF_RESCHEDULE {
			s.Schedule(timer)
		}
	}
}

// NextWake returns the earliest pending wake time
func (s *Scheduler) NextWake() (uint64, bool) {
	if s.timerList == nil {
		return 0, false
	}
	return s.timerList.WakeTime, true
}

// Pending reports whether any timer is queued
func (s *Scheduler) Pending() bool {
	return s.timerList != nil
}
