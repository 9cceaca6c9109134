package dto

// CourseStudyTime contains the total studied seconds for one course.
type CourseStudyTime struct {
	Course  string  `json:"course" db:"course"`
	Seconds float64 `json:"seconds" db:"seconds"`
}

// WeekdayStudyTime contains the studied seconds for one ISO weekday (1=Monday).
type WeekdayStudyTime struct {
	Weekday int     `json:"weekday" db:"weekday"`
	Seconds float64 `json:"seconds" db:"seconds"`
}

// StreakSummary reports consecutive-day study streaks. LastSevenDays holds
// one flag per calendar day, oldest first, ending today.
type StreakSummary struct {
	CurrentDays   int    `json:"currentDays"`
	ActiveToday   bool   `json:"activeToday"`
	LastSevenDays []bool `json:"lastSevenDays"`
}

// DashboardOverviewResponse aggregates the dashboard payload.
type DashboardOverviewResponse struct {
	StudyTimeByCourse []CourseStudyTime  `json:"studyTimeByCourse"`
	Streak            StreakSummary      `json:"streak"`
	WeekdayBreakdown  []WeekdayStudyTime `json:"weekdayBreakdown"`
	TotalSeconds      float64            `json:"totalSeconds"`
}
