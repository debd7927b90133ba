package core

// DefaultSystickMS is the main loop tick used by the light logic
const DefaultSystickMS = 20

// Systick raises a flag once per period through the timer scheduler.
// Missed periods are dropped rather than replayed.
type Systick struct {
	timer   Timer
	period  uint32
	pending bool
}

// NewSystick creates a systick with the given period in timer ticks
func NewSystick(period uint32) *Systick {
	s := &Systick{period: period}
	s.timer.Handler = s.fire
	return s
}

// Start schedules the first tick one period from now
func (s *Systick) Start() {
	s.pending = false
	s.timer.WakeTime = GetTime() + s.period
	ScheduleTimer(&s.timer)
}

// Stop removes the systick from the schedule
func (s *Systick) Stop() {
	CancelTimer(&s.timer)
}

// Period returns the tick period in timer ticks
func (s *Systick) Period() uint32 {
	return s.period
}

// Take reports whether a tick fired since the last call and clears it
func (s *Systick) Take() bool {
	p := s.pending
	s.pending = false
	return p
}

func (s *Systick) fire(t *Timer) uint8 {
	s.pending = true
	t.WakeTime += s.period
	if !timeBefore(currentTime, t.WakeTime) {
		t.WakeTime = currentTime + s.period
	}
	return SF_RESCHEDULE
}
