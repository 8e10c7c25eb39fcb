package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

// ParseICS converts an ICS payload into events tagged with src.
//
//   - VEVENTs without a UID or DTSTART are logged and skipped.
//   - Recurring events contribute their first occurrence only; the RRULE is
//     logged. Overridden instances (RECURRENCE-ID) are skipped.
//   - All-day events use the inclusive model bounds: DTEND is exclusive in
//     ICS, so the last day is the one before it.
func ParseICS(src Source, body []byte, loc *time.Location) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]model.Event, 0, len(cal.Events()))
	recurring := 0
	for _, comp := range cal.Events() {
		if comp.GetProperty(ical.ComponentProperty("RECURRENCE-ID")) != nil {
			continue
		}
		ev, perr := parseVEvent(src, comp, loc)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		if p := comp.GetProperty(ical.ComponentPropertyRrule); p != nil {
			recurring++
			appLog.Debug("ics recurrence not expanded", "id", src.ID, "uid", ev.ID, "rrule", p.Value)
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events), "recurring", recurring)
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.ID = src.ID + ":" + uidProp.Value
	out.SourceID = src.ID
	out.Color = src.Color

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentProperty("COLOR")); p != nil && strings.TrimSpace(p.Value) != "" {
		out.Color = strings.ToLower(strings.TrimSpace(p.Value))
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	if out.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return out, err
		}
		start = inDay(start, loc)
		last := start
		if end, err := ve.GetAllDayEndAt(); err == nil {
			if end = inDay(end, loc); end.After(start) {
				last = timeutil.AddDays(end, -1)
			}
		} else if d, ok := durationOf(ve); ok && d.Days > 1 {
			last = timeutil.AddDays(start, d.Days-1)
		}
		out.Start = timeutil.StartOfDay(start)
		out.End = timeutil.EndOfDay(last)
		return out, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start.In(loc)
	out.End = out.Start.Add(defaultTimedLength)
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		if end, err := ve.GetEndAt(); err == nil && end.After(start) {
			out.End = end.In(loc)
		}
	} else if d, ok := durationOf(ve); ok {
		if end := d.addTo(out.Start); end.After(out.Start) {
			out.End = end
		}
	}
	return out, nil
}

// durationOf reads DURATION; a malformed value is logged and ignored.
func durationOf(ve *ical.VEvent) (icsDuration, bool) {
	p := ve.GetProperty(ical.ComponentPropertyDuration)
	if p == nil {
		return icsDuration{}, false
	}
	d, err := parseDuration(p.Value)
	if err != nil {
		appLog.Debug("ics duration ignored", "value", p.Value, "error", err)
		return icsDuration{}, false
	}
	return d, true
}

// isDateValue reports whether DTSTART is a DATE (VALUE=DATE or no time part).
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// inDay re-reads a floating date as the same calendar day in loc.
func inDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
