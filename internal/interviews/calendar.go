package interviews

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

const productID = "-//internship-management//interviews//EN"

// Calendar renders the meetings actor can see as an iCalendar document.
// Dates are read in loc.
func (s *Service) Calendar(ctx context.Context, actor models.User, loc *time.Location) (string, error) {
	views, err := s.List(ctx, actor)
	if err != nil {
		return "", err
	}
	meetings := make([]models.Meeting, 0, len(views))
	for _, v := range views {
		meetings = append(meetings, v.Meeting)
	}
	return BuildCalendar(meetings, loc, time.Now())
}

// BuildCalendar converts meetings into VEVENTs. Meetings with unparsable
// dates are skipped.
func BuildCalendar(meetings []models.Meeting, loc *time.Location, stamp time.Time) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	for _, m := range meetings {
		start, err := m.Start(loc)
		if err != nil {
			continue
		}
		end, err := m.End(loc)
		if err != nil {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("%s@internship-management", m.ID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(m.Title)
		if m.Link != "" {
			ev.SetURL(m.Link)
			ev.SetLocation(m.Link)
		}
		ev.SetDescription(fmt.Sprintf("Application %s", m.ApplicationID))
		switch m.Status {
		case models.MeetingCancelled:
			ev.SetStatus(ics.ObjectStatusCancelled)
		default:
			ev.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	return cal.Serialize(), nil
}
