// internal/availability/availability.go
package availability

import (
	"fmt"
	"time"

	"github.com/mealworks/menucore/internal/intervals"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Order slot availability over fulfillment operating hours.
 *
 * Builds per-day unions of operating hours and blocked-off ranges across
 * the enabled fulfillments, then resolves candidate order times against
 * them at the fulfillments' slot granularity.
 *
 * Computation flow:
 *   1. ComputeInfo: union blocked-off + operating intervals for the date,
 *      take min time step and combined lead time across fulfillments
 *   2. FirstAvailableTime: clamp to now+lead on same-day orders, then
 *      resolve against blocked-off ranges
 *   3. AllAvailableSlots: sweep the operating intervals by the time step,
 *      re-resolving after every advance
 *
 * Lead time: per-unit lead (min lead + per-unit increment) and cart-based
 * lead are mutually exclusive maxima, not additive.
 *
 * All times are integer minutes; no sub-minute precision. DST transitions
 * are not specially handled: a slot list computed across a transition uses
 * naive minutes-of-day arithmetic. Known limitation carried as-is.
 */

// Unavailable is returned by FirstAvailableTime when no slot exists that day.
const Unavailable = -1

// Info aggregates the scheduling inputs for one date and fulfillment set.
type Info struct {
	BlockedOff      []intervals.Interval
	Operating       []intervals.Interval
	MinTimeStep     int
	LeadTimeMinutes int
}

// Slot is one selectable order time, in minutes from midnight.
type Slot struct {
	Value    int
	Disabled bool
}

// BlockedOffUnion concatenates the blocked-off intervals of every enabled
// fulfillment for the given date key and returns their union.
func BlockedOffUnion(services map[types.FulfillmentID]*types.Fulfillment, enabled []types.FulfillmentID, dateKey string) ([]intervals.Interval, error) {
	var all []intervals.Interval
	for _, id := range enabled {
		svc, ok := services[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownFulfillment, id)
		}
		all = append(all, svc.BlockedOff[dateKey]...)
	}
	return intervals.Union(all), nil
}

// OperatingHoursUnion concatenates the operating intervals of every enabled
// fulfillment for the given weekday and returns their union.
func OperatingHoursUnion(services map[types.FulfillmentID]*types.Fulfillment, enabled []types.FulfillmentID, day time.Weekday) ([]intervals.Interval, error) {
	var all []intervals.Interval
	for _, id := range enabled {
		svc, ok := services[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownFulfillment, id)
		}
		all = append(all, svc.OperatingHours[day]...)
	}
	return intervals.Union(all), nil
}

// ComputeInfo assembles availability inputs for one date.
//
// MinTimeStep is the smallest time step across enabled fulfillments.
// LeadTimeMinutes is the larger of the per-unit lead time
// (minLeadTime + (orderSize-1)*additionalUnitLeadTime, taking each term's
// maximum across fulfillments) and the cart-based lead time.
func ComputeInfo(services map[types.FulfillmentID]*types.Fulfillment, enabled []types.FulfillmentID, date time.Time, orderSize, cartLeadTime int) (Info, error) {
	blocked, err := BlockedOffUnion(services, enabled, date.Format(types.DateKeyLayout))
	if err != nil {
		return Info{}, err
	}
	operating, err := OperatingHoursUnion(services, enabled, date.Weekday())
	if err != nil {
		return Info{}, err
	}

	minStep := 0
	minLead := 0
	unitLead := 0
	for _, id := range enabled {
		svc := services[id]
		if minStep == 0 || svc.TimeStep < minStep {
			minStep = svc.TimeStep
		}
		if svc.MinLeadTime > minLead {
			minLead = svc.MinLeadTime
		}
		if svc.AdditionalUnitLeadTime > unitLead {
			unitLead = svc.AdditionalUnitLeadTime
		}
	}
	if minStep <= 0 {
		minStep = 1
	}

	lead := minLead
	if orderSize > 1 {
		lead += (orderSize - 1) * unitLead
	}
	if cartLeadTime > lead {
		lead = cartLeadTime
	}

	return Info{
		BlockedOff:      blocked,
		Operating:       operating,
		MinTimeStep:     minStep,
		LeadTimeMinutes: lead,
	}, nil
}

// FirstAvailableTime returns the earliest selectable slot on date, in
// minutes from midnight, or Unavailable.
//
// Same-day requests clamp to the next step boundary at or after now+lead.
// Dates before now+lead's day are unavailable. Future dates start from the
// first operating interval.
func FirstAvailableTime(info Info, date, now time.Time) int {
	if len(info.Operating) == 0 {
		return Unavailable
	}

	earliest := now.Add(time.Duration(info.LeadTimeMinutes) * time.Minute)
	dateKey := date.Format(types.DateKeyLayout)
	earliestKey := earliest.Format(types.DateKeyLayout)

	candidate := info.Operating[0].Start
	switch {
	case dateKey == earliestKey:
		mins := earliest.Hour()*60 + earliest.Minute()
		step := info.MinTimeStep
		candidate = ((mins + step - 1) / step) * step
	case dateKey < earliestKey:
		return Unavailable
	}

	return resolveAgainstBlockedOff(info.BlockedOff, info.Operating, candidate, info.MinTimeStep)
}

// AllAvailableSlots sweeps the operating intervals by MinTimeStep and
// returns every slot that resolves against the blocked-off union.
func AllAvailableSlots(info Info, date, now time.Time) []Slot {
	slots := []Slot{}
	t := FirstAvailableTime(info, date, now)
	for t != Unavailable {
		slots = append(slots, Slot{Value: t})
		t = resolveAgainstBlockedOff(info.BlockedOff, info.Operating, t+info.MinTimeStep, info.MinTimeStep)
	}
	return slots
}

// resolveAgainstBlockedOff walks the operating intervals in order. Within
// each, a candidate falling inside a blocked-off interval advances to that
// interval's end plus step, repeating until stable. Returns the first
// stable time within an operating interval, or Unavailable when the
// advanced time escapes every interval.
func resolveAgainstBlockedOff(blocked, operating []intervals.Interval, candidate, step int) int {
	for _, op := range operating {
		t := candidate
		if op.Start > t {
			t = op.Start
		}
		for t <= op.End {
			advanced := false
			for _, b := range blocked {
				if b.Contains(t) {
					t = b.End + step
					advanced = true
				}
			}
			if !advanced {
				return t
			}
		}
	}
	return Unavailable
}
