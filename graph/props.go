package graph

import (
	"math"
	"strconv"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

func positionProps(p Properties, pos model.LatLong) {
	p[KeyLatE6] = IntValue(int64(math.Round(pos.Lat * 1e6)))
	p[KeyLonE6] = IntValue(int64(math.Round(pos.Lon * 1e6)))
}

func calendarProps(p Properties, cal model.ServiceCalendar) {
	var weekdays uint64
	for i, runs := range cal.Weekdays {
		if runs {
			weekdays |= 1 << i
		}
	}
	p[KeyStartDate] = IntValue(cal.Start.Key())
	p[KeyEndDate] = IntValue(cal.End.Key())
	p[KeyWeekdays] = EnumSetValue(weekdays)
	p[KeyAddedDates] = IDSetValue(dateKeys(cal.Added)...)
	p[KeyRemovedDates] = IDSetValue(dateKeys(cal.Removed)...)
}

func dateKeys(dates []model.Date) []string {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, strconv.FormatInt(d.Key(), 10))
	}
	return keys
}

func datesFromKeys(keys []string) []model.Date {
	dates := make([]model.Date, 0, len(keys))
	for _, k := range keys {
		n, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		dates = append(dates, model.DateFromKey(n))
	}
	return dates
}

// Calendar decodes the calendar stored on a Service node.
func (p Properties) Calendar() model.ServiceCalendar {
	cal := model.ServiceCalendar{
		Start:   model.DateFromKey(p.Int(KeyStartDate)),
		End:     model.DateFromKey(p.Int(KeyEndDate)),
		Added:   datesFromKeys(p.IDs(KeyAddedDates)),
		Removed: datesFromKeys(p.IDs(KeyRemovedDates)),
	}
	bits, _ := p[KeyWeekdays].AsEnumSet()
	for i := range cal.Weekdays {
		cal.Weekdays[i] = bits&(1<<i) != 0
	}
	return cal
}
