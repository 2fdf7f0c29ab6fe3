package domain

import "time"

// Receipt records one successful vend: the resolved product and the
// account balance after deduction.
type Receipt struct {
	ID        string
	Product   string
	Balance   int
	CreatedAt time.Time
}
