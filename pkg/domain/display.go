package domain

import (
	"strings"
	"time"
)

const (
	PlaceholderImageURL = "https://via.placeholder.com/400x300?text=No+Image"
	DefaultCurrency     = "BRL"
)

type EventStatus string

const (
	StatusCancelled EventStatus = "cancelled"
	StatusPostponed EventStatus = "postponed"
	StatusEnded     EventStatus = "ended"
	StatusOnSale    EventStatus = "onsale"
	StatusDateTBD   EventStatus = "date_tbd"
)

type PriceSummary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Expired bool `json:"expired"`
}

// PrimaryImageURL prefers a wide 16:9 image, then a medium one, then the
// first image listed.
func (e Event) PrimaryImageURL() string {
	if len(e.Images) == 0 {
		return PlaceholderImageURL
	}
	for _, minWidth := range []int{1000, 500} {
		for _, img := range e.Images {
			if img.Ratio == "16_9" && img.Width > minWidth && img.URL != "" {
				return img.URL
			}
		}
	}
	return e.Images[0].URL
}

// PriceSummary spans the lowest minimum and highest maximum of all ranges.
func (e Event) PriceSummary() PriceSummary {
	if len(e.PriceRanges) == 0 {
		return PriceSummary{Currency: DefaultCurrency}
	}

	summary := PriceSummary{
		Min:      e.PriceRanges[0].Min,
		Max:      e.PriceRanges[0].Max,
		Currency: e.PriceRanges[0].Currency,
	}
	for _, r := range e.PriceRanges[1:] {
		if r.Min < summary.Min {
			summary.Min = r.Min
		}
		if r.Max > summary.Max {
			summary.Max = r.Max
		}
	}
	if summary.Currency == "" {
		summary.Currency = DefaultCurrency
	}
	return summary
}

func (e Event) Categories() []string {
	if len(e.Classifications) == 0 {
		return nil
	}

	c := e.Classifications[0]
	var categories []string
	for _, ref := range []*NamedRef{c.Segment, c.Genre, c.SubGenre} {
		if ref != nil && strings.TrimSpace(ref.Name) != "" {
			categories = append(categories, ref.Name)
		}
	}
	return categories
}

// StartTime resolves the start from the absolute timestamp, falling back to
// the local date and time. Local values are interpreted as UTC.
func (e Event) StartTime() (time.Time, bool) {
	if e.Dates == nil {
		return time.Time{}, false
	}
	start := e.Dates.Start

	if start.DateTime != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
			if t, err := time.Parse(layout, start.DateTime); err == nil {
				return t, true
			}
		}
	}

	if start.LocalDate != "" && start.LocalTime != "" {
		if t, err := time.Parse("2006-01-02T15:04:05", start.LocalDate+"T"+start.LocalTime); err == nil {
			return t, true
		}
	}

	if start.LocalDate != "" {
		if t, err := time.Parse("2006-01-02", start.LocalDate); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (e Event) Countdown(now time.Time) Countdown {
	start, ok := e.StartTime()
	if !ok {
		return Countdown{Expired: true}
	}

	diff := start.Sub(now)
	if diff < 0 {
		return Countdown{Expired: true}
	}

	return Countdown{
		Days:    int(diff / (24 * time.Hour)),
		Hours:   int((diff % (24 * time.Hour)) / time.Hour),
		Minutes: int((diff % time.Hour) / time.Minute),
	}
}

// Status derives a display status. Availability ("sold out") is not part of
// the upstream payload and is never reported.
func (e Event) Status(now time.Time) EventStatus {
	if e.Dates != nil && e.Dates.Status != nil {
		switch strings.ToLower(e.Dates.Status.Code) {
		case "cancelled", "canceled":
			return StatusCancelled
		case "postponed":
			return StatusPostponed
		}
	}

	start, ok := e.StartTime()
	if !ok {
		return StatusDateTBD
	}
	if start.Before(now) {
		return StatusEnded
	}
	return StatusOnSale
}

// VenueLabel renders the first embedded venue as "Name, City - ST".
func (e Event) VenueLabel() string {
	if e.Embedded == nil || len(e.Embedded.Venues) == 0 {
		return ""
	}
	v := e.Embedded.Venues[0]

	label := v.Name
	if v.City != nil && v.City.Name != "" {
		if label != "" {
			label += ", "
		}
		label += v.City.Name
	}
	if v.State != nil && v.State.StateCode != "" {
		if label != "" {
			label += " - "
		}
		label += v.State.StateCode
	}
	return label
}

// EventSummary is the card-level rendering of an event. Start and Countdown
// are omitted when the start cannot be resolved.
type EventSummary struct {
	Image      string       `json:"image"`
	Price      PriceSummary `json:"price"`
	Categories []string     `json:"categories,omitempty"`
	Start      *time.Time   `json:"start,omitempty"`
	Countdown  *Countdown   `json:"countdown,omitempty"`
	Status     EventStatus  `json:"status"`
	Venue      string       `json:"venue,omitempty"`
}

func (e Event) Summarize(now time.Time) EventSummary {
	summary := EventSummary{
		Image:      e.PrimaryImageURL(),
		Price:      e.PriceSummary(),
		Categories: e.Categories(),
		Status:     e.Status(now),
		Venue:      e.VenueLabel(),
	}
	if start, ok := e.StartTime(); ok {
		countdown := e.Countdown(now)
		summary.Start = &start
		summary.Countdown = &countdown
	}
	return summary
}

// EventView is an event with its summary alongside the upstream fields.
type EventView struct {
	Event
	Summary EventSummary `json:"summary"`
}

func NewEventView(event Event, now time.Time) EventView {
	return EventView{Event: event, Summary: event.Summarize(now)}
}

type PageView struct {
	Events []EventView `json:"events"`
	Page   PageInfo    `json:"page"`
}

func NewPageView(page *PageResult, now time.Time) PageView {
	if page == nil {
		return PageView{Events: []EventView{}}
	}
	events := make([]EventView, len(page.Events))
	for i, event := range page.Events {
		events[i] = NewEventView(event, now)
	}
	return PageView{Events: events, Page: page.Page}
}
