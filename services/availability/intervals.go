// services/availability/intervals.go
package availability

import (
	"fmt"

	"classfinder/models"
)

// NoFreeLabel is the time range shown for a room that is never free.
const NoFreeLabel = "无空闲"

var dayNames = [models.DaysPerWeek]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// LongestFree returns the length and start index of the longest run of free
// slots. Ties keep the earliest run. start is -1 when nothing is free.
func LongestFree(slots []bool) (length, start int) {
	start = -1
	run, runStart := 0, -1
	for i, free := range slots {
		if !free {
			if run > length {
				length, start = run, runStart
			}
			run = 0
			continue
		}
		if run == 0 {
			runStart = i
		}
		run++
	}
	if run > length {
		length, start = run, runStart
	}
	return length, start
}

// FormatTimeRange renders a run on the weekly grid, e.g. "周一 第3节 - 周二 第1节".
// The grid is treated as one continuous week, so a run may cross midnight.
func FormatTimeRange(start, length int) string {
	if start < 0 || length <= 0 {
		return NoFreeLabel
	}
	end := start + length - 1
	return fmt.Sprintf("%s - %s", slotLabel(start), slotLabel(end))
}

func slotLabel(idx int) string {
	day := (idx / models.PeriodsPerDay) % models.DaysPerWeek
	period := idx%models.PeriodsPerDay + 1
	return fmt.Sprintf("%s 第%d节", dayNames[day], period)
}

// NewRoomSlot computes the free-interval summary for one grid row.
func NewRoomSlot(room string, slots []bool) models.RoomSlot {
	length, start := LongestFree(slots)
	return models.RoomSlot{
		Room:      room,
		MaxFree:   length,
		TimeRange: FormatTimeRange(start, length),
		Slots:     slots,
	}
}

// Summarize picks the room with the most consecutive free periods. Rooms are
// compared in page order and the first one wins a tie.
func Summarize(rooms []models.RoomSlot) (models.RoomSlot, bool) {
	if len(rooms) == 0 {
		return models.RoomSlot{}, false
	}
	best := rooms[0]
	for _, r := range rooms[1:] {
		if r.MaxFree > best.MaxFree {
			best = r
		}
	}
	return best, true
}
