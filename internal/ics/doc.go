// Package ics imports events from ICS feeds and exports the event store as
// an ICS calendar.
package ics
