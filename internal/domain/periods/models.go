package periods

import "time"

type Period struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Active        bool      `json:"active"`
	AssignmentCnt int       `json:"assignmentCount"`
}

type NewPeriod struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	MakeActive bool
}
