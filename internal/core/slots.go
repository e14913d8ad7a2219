package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"residentbook-backend-go/internal/models"
)

// SlotWindow is the daily operating window slots are generated for.
type SlotWindow struct {
	StartHour int // inclusive, 0-23
	EndHour   int // exclusive, 1-24
	StepHours int
}

// DefaultWindow is 09:00 to 21:00 in one-hour slots.
var DefaultWindow = SlotWindow{StartHour: 9, EndHour: 21, StepHours: 1}

const labelSeparator = " - "

// GenerateSlots returns the candidate labels of window in chronological order,
// e.g. "9:00 AM - 10:00 AM".
func GenerateSlots(w SlotWindow) []string {
	step := w.StepHours
	if step <= 0 {
		step = 1
	}
	labels := make([]string, 0, (w.EndHour-w.StartHour)/step+1)
	for h := w.StartHour; h+step <= w.EndHour; h += step {
		labels = append(labels, hourLabel(h)+labelSeparator+hourLabel(h+step))
	}
	return labels
}

// DefaultSlots returns the twelve labels of DefaultWindow.
func DefaultSlots() []string {
	return GenerateSlots(DefaultWindow)
}

func hourLabel(h int) string {
	h %= 24
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:00 %s", h12, suffix)
}

// FormatClock converts a 24-hour "HH:MM" value to "h:MM AM|PM".
func FormatClock(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return t.Format("3:04 PM"), nil
}

// LabelFromTimes builds a slot label from two "HH:MM" values. end must be
// after start.
func LabelFromTimes(start, end string) (string, error) {
	from, err := time.Parse("15:04", start)
	if err != nil {
		return "", NewValidationError("startTime", "must be a time in HH:MM format")
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		return "", NewValidationError("endTime", "must be a time in HH:MM format")
	}
	if !to.After(from) {
		return "", NewValidationError("endTime", "must be after startTime")
	}
	return from.Format("3:04 PM") + labelSeparator + to.Format("3:04 PM"), nil
}

// LabelStart returns the minutes since midnight at which label begins.
func LabelStart(label string) (int, bool) {
	start, _, _ := strings.Cut(label, labelSeparator)
	t, err := time.Parse("3:04 PM", strings.TrimSpace(start))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// compareLabels orders labels by start time; unparseable labels go last.
func compareLabels(a, b string) int {
	ma, okA := LabelStart(a)
	mb, okB := LabelStart(b)
	switch {
	case okA && okB:
		return ma - mb
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortSlots orders slots chronologically by label start, in place.
func SortSlots(slots []*models.Slot) {
	slices.SortStableFunc(slots, func(a, b *models.Slot) int {
		return compareLabels(a.Slot, b.Slot)
	})
}
