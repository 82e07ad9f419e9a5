package model

// Task is one scheduled activity of the day.
// Time is a wall-clock "HH:MM"; Duration is in minutes.
type Task struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Duration int    `json:"duration"`
}

// Routine is the ordered list of tasks for a day. Order defines which task
// follows which; nothing enforces chronological order.
type Routine []Task

// Clone returns an independent copy. A nil routine stays nil.
func (r Routine) Clone() Routine {
	if r == nil {
		return nil
	}
	out := make(Routine, len(r))
	copy(out, r)
	return out
}

// Next returns the task after index i, if any.
func (r Routine) Next(i int) (Task, bool) {
	if i < 0 || i+1 >= len(r) {
		return Task{}, false
	}
	return r[i+1], true
}

// DefaultRoutine is used when no routine file exists yet.
func DefaultRoutine() Routine {
	return Routine{
		{Time: "08:00", Activity: "Wake Up", Duration: 30},
		{Time: "08:30", Activity: "Drink a glass of water", Duration: 5},
		{Time: "08:35", Activity: "Prayer and Worship", Duration: 15},
		{Time: "08:50", Activity: "Gentle Movement (Stretching/Yoga/Walk)", Duration: 20},
		{Time: "09:10", Activity: "Healthy Breakfast", Duration: 20},
		{Time: "09:30", Activity: "Focused Planning for the Day", Duration: 10},
		{Time: "09:40", Activity: "Start Productive Work Session", Duration: 60},
	}
}
