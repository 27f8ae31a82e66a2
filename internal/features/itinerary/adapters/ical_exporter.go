package adapters

import (
	"fmt"
	"strings"
	"time"

	"trip-stitcher/internal/core/logger"
	"trip-stitcher/internal/features/itinerary/domain"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

const icalLocalLayout = "20060102T150405"

// TimezoneResolver maps coordinates to a time zone.
type TimezoneResolver interface {
	Location(lat, lon float64) (*time.Location, error)
}

// ICalExporter implements ports.CalendarExporter. Segments whose start
// location carries coordinates are written in the local time zone of that
// place; everything else is written in UTC.
type ICalExporter struct {
	zones TimezoneResolver
}

// NewICalExporter creates an exporter. zones may be nil.
func NewICalExporter(zones TimezoneResolver) *ICalExporter {
	return &ICalExporter{zones: zones}
}

// Export renders one VEVENT per segment.
func (x *ICalExporter) Export(itinerary *domain.Itinerary) ([]byte, error) {
	if itinerary == nil {
		return nil, fmt.Errorf("no itinerary to export")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//trip-stitcher//itinerary//EN")
	cal.SetXWRCalName("Itinerary " + itinerary.ID)

	stamp := itinerary.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}

	zones := make([]*time.Location, len(itinerary.Segments))
	spans := map[string]*zoneSpan{}
	var order []string
	for i, seg := range itinerary.Segments {
		loc := x.zoneFor(seg.StartLocation)
		if loc == nil {
			continue
		}
		zones[i] = loc
		span, ok := spans[loc.String()]
		if !ok {
			span = &zoneSpan{loc: loc, from: seg.StartTime, to: seg.EndTime}
			spans[loc.String()] = span
			order = append(order, loc.String())
		}
		span.cover(seg.StartTime, seg.EndTime)
	}
	for _, name := range order {
		addTimezone(cal, spans[name])
	}

	for i, seg := range itinerary.Segments {
		event := cal.AddEvent(seg.ID + "@" + itinerary.ID)
		event.SetDtStampTime(stamp)
		event.SetSummary(summary(seg))
		event.SetLocation(seg.StartLocation.DisplayName())
		event.SetDescription(description(seg))

		if loc := zones[i]; loc != nil {
			tzid := &ics.KeyValues{Key: "TZID", Value: []string{loc.String()}}
			event.SetProperty(ics.ComponentPropertyDtStart, seg.StartTime.In(loc).Format(icalLocalLayout), tzid)
			event.SetProperty(ics.ComponentPropertyDtEnd, seg.EndTime.In(loc).Format(icalLocalLayout), tzid)
		} else {
			event.SetStartAt(seg.StartTime)
			event.SetEndAt(seg.EndTime)
		}
	}

	return []byte(cal.Serialize()), nil
}

// zoneSpan is the time range a VTIMEZONE has to describe.
type zoneSpan struct {
	loc      *time.Location
	from, to time.Time
}

func (z *zoneSpan) cover(start, end time.Time) {
	if start.Before(z.from) {
		z.from = start
	}
	if end.After(z.to) {
		z.to = end
	}
}

// addTimezone writes one STANDARD or DAYLIGHT observance for every offset
// period of the zone that overlaps the span, so that each TZID used by an
// event is defined in the calendar itself.
func addTimezone(cal *ics.Calendar, span *zoneSpan) {
	tz := cal.AddTimezone(span.loc.String())

	t := span.from.In(span.loc)
	for {
		name, offset := t.Zone()
		start, end := t.ZoneBounds()

		previous := offset
		onset := time.Unix(0, 0).UTC()
		if !start.IsZero() {
			_, previous = start.Add(-time.Second).Zone()
			onset = start
		}

		observance := ics.ComponentBase{}
		observance.SetProperty(ics.ComponentPropertyDtStart, onset.UTC().Add(time.Duration(previous)*time.Second).Format(icalLocalLayout))
		observance.SetProperty(ics.ComponentProperty(ics.PropertyTzoffsetfrom), formatOffset(previous))
		observance.SetProperty(ics.ComponentProperty(ics.PropertyTzoffsetto), formatOffset(offset))
		observance.SetProperty(ics.ComponentProperty(ics.PropertyTzname), name)
		if t.IsDST() {
			tz.Components = append(tz.Components, &ics.Daylight{ComponentBase: observance})
		} else {
			tz.Components = append(tz.Components, &ics.Standard{ComponentBase: observance})
		}

		if end.IsZero() || !end.Before(span.to) {
			return
		}
		t = end.In(span.loc)
	}
}

// formatOffset renders seconds east of UTC as an iCalendar UTC-OFFSET.
func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d%02d", sign, seconds/3600, seconds%3600/60)
}

func (x *ICalExporter) zoneFor(l domain.Location) *time.Location {
	if x.zones == nil || l.Coordinates == nil {
		return nil
	}
	loc, err := x.zones.Location(l.Coordinates.Lat, l.Coordinates.Lon)
	if err != nil {
		logger.Named("calendar").Debug("Falling back to UTC for calendar event", zap.Error(err))
		return nil
	}
	return loc
}

func summary(seg domain.Segment) string {
	kind := strings.ToLower(string(seg.Kind))
	switch {
	case seg.IsSynthesized():
		return fmt.Sprintf("Transfer to %s (suggested)", seg.EndLocation.DisplayName())
	case seg.StartLocation.DisplayName() != seg.EndLocation.DisplayName():
		return fmt.Sprintf("%s: %s to %s", kind, seg.StartLocation.DisplayName(), seg.EndLocation.DisplayName())
	default:
		return fmt.Sprintf("%s: %s", kind, seg.StartLocation.DisplayName())
	}
}

func description(seg domain.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s", strings.ToLower(string(seg.Provenance)))
	if seg.ConfirmationReference != "" {
		fmt.Fprintf(&b, "\nConfirmation: %s", seg.ConfirmationReference)
	}
	if seg.StartLocation.Address != "" {
		fmt.Fprintf(&b, "\nAddress: %s", seg.StartLocation.Address)
	}
	return b.String()
}
