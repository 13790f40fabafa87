// internal/domain/checkout/timeslots.go
package checkout

import (
	"fmt"
	"time"

	"github.com/veggiefresh/grocery-backend/internal/domain/order"
)

const (
	slotDays      = 2
	slotFirstHour = 8
	slotLastHour  = 20
	slotLength    = 2
)

// TimeSlotOption is a delivery window offered at checkout
type TimeSlotOption struct {
	order.TimeSlot
	Label string `json:"label"`
}

// GenerateTimeSlots returns the 2-hour windows between 08:00 and 20:00 for today
// and tomorrow, in now's location
func GenerateTimeSlots(now time.Time) []TimeSlotOption {
	slots := make([]TimeSlotOption, 0, slotDays*(slotLastHour-slotFirstHour)/slotLength)
	year, month, day := now.Date()

	for d := 0; d < slotDays; d++ {
		date := time.Date(year, month, day+d, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		for h := slotFirstHour; h < slotLastHour; h += slotLength {
			start := fmt.Sprintf("%02d:00", h)
			end := fmt.Sprintf("%02d:00", h+slotLength)
			slots = append(slots, TimeSlotOption{
				TimeSlot: order.TimeSlot{Date: date, StartTime: start, EndTime: end},
				Label:    start + " - " + end,
			})
		}
	}
	return slots
}
