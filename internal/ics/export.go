package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

const productID = "-//eventcal//eventcal//EN"

// Export serializes events as a PUBLISH calendar. now stamps DTSTAMP.
func Export(events []model.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		uid := e.ID
		if uid == "" {
			continue
		}
		// Imported IDs are "<source>:<uid>"; give the feed back its own UID.
		if e.SourceID != "" {
			uid = strings.TrimPrefix(uid, e.SourceID+":")
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Color != "" {
			ve.SetProperty(ical.ComponentProperty("COLOR"), e.Color)
		}
		if e.AllDay {
			ve.SetAllDayStartAt(timeutil.StartOfDay(e.Start))
			// DTEND is exclusive for DATE values.
			ve.SetAllDayEndAt(timeutil.AddDays(timeutil.StartOfDay(e.End), 1))
			continue
		}
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
	}
	return cal.Serialize()
}
