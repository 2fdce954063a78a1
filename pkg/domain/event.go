package domain

// Event mirrors the Ticketmaster Discovery event resource. JSON names match
// the upstream payload so an event decoded from the API encodes back to the
// same fields.
type Event struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	URL             string           `json:"url,omitempty"`
	Images          []Image          `json:"images,omitempty"`
	Dates           *EventDates      `json:"dates,omitempty"`
	Sales           *Sales           `json:"sales,omitempty"`
	PriceRanges     []PriceRange     `json:"priceRanges,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
	Info            string           `json:"info,omitempty"`
	PleaseNote      string           `json:"pleaseNote,omitempty"`
	Seatmap         *Seatmap         `json:"seatmap,omitempty"`
	Embedded        *EventEmbedded   `json:"_embedded,omitempty"`
}

type Image struct {
	URL    string `json:"url"`
	Ratio  string `json:"ratio,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type EventDates struct {
	Start  EventStart  `json:"start"`
	Status *DateStatus `json:"status,omitempty"`
}

// EventStart carries whichever of the local date, local time and absolute
// timestamp the upstream knows about.
type EventStart struct {
	LocalDate string `json:"localDate,omitempty"`
	LocalTime string `json:"localTime,omitempty"`
	DateTime  string `json:"dateTime,omitempty"`
}

type DateStatus struct {
	Code string `json:"code,omitempty"`
}

type Sales struct {
	Public *PublicSale `json:"public,omitempty"`
}

type PublicSale struct {
	EndDateTime string `json:"endDateTime,omitempty"`
}

type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Type     string  `json:"type,omitempty"`
}

type Classification struct {
	Segment  *NamedRef `json:"segment,omitempty"`
	Genre    *NamedRef `json:"genre,omitempty"`
	SubGenre *NamedRef `json:"subGenre,omitempty"`
}

type NamedRef struct {
	Name string `json:"name,omitempty"`
}

type Seatmap struct {
	StaticURL string `json:"staticUrl,omitempty"`
}

type EventEmbedded struct {
	Venues []Venue `json:"venues,omitempty"`
}

type Venue struct {
	Name    string        `json:"name"`
	State   *VenueState   `json:"state,omitempty"`
	City    *VenueCity    `json:"city,omitempty"`
	Address *VenueAddress `json:"address,omitempty"`
}

type VenueState struct {
	StateCode string `json:"stateCode"`
}

type VenueCity struct {
	Name string `json:"name"`
}

type VenueAddress struct {
	Line1 string `json:"line1,omitempty"`
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	out := e
	if e.Images != nil {
		out.Images = append(make([]Image, 0, len(e.Images)), e.Images...)
	}
	if e.PriceRanges != nil {
		out.PriceRanges = append(make([]PriceRange, 0, len(e.PriceRanges)), e.PriceRanges...)
	}

	if e.Dates != nil {
		dates := *e.Dates
		if e.Dates.Status != nil {
			status := *e.Dates.Status
			dates.Status = &status
		}
		out.Dates = &dates
	}
	if e.Sales != nil {
		sales := *e.Sales
		if e.Sales.Public != nil {
			public := *e.Sales.Public
			sales.Public = &public
		}
		out.Sales = &sales
	}
	if e.Classifications != nil {
		out.Classifications = make([]Classification, len(e.Classifications))
		for i, c := range e.Classifications {
			out.Classifications[i] = Classification{
				Segment:  cloneRef(c.Segment),
				Genre:    cloneRef(c.Genre),
				SubGenre: cloneRef(c.SubGenre),
			}
		}
	}
	if e.Seatmap != nil {
		seatmap := *e.Seatmap
		out.Seatmap = &seatmap
	}
	if e.Embedded != nil {
		embedded := EventEmbedded{}
		if e.Embedded.Venues != nil {
			embedded.Venues = make([]Venue, len(e.Embedded.Venues))
			for i, v := range e.Embedded.Venues {
				embedded.Venues[i] = v.clone()
			}
		}
		out.Embedded = &embedded
	}

	return out
}

func (v Venue) clone() Venue {
	out := v
	if v.State != nil {
		state := *v.State
		out.State = &state
	}
	if v.City != nil {
		city := *v.City
		out.City = &city
	}
	if v.Address != nil {
		address := *v.Address
		out.Address = &address
	}
	return out
}

func cloneRef(ref *NamedRef) *NamedRef {
	if ref == nil {
		return nil
	}
	r := *ref
	return &r
}
