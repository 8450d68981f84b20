package model

// WindowState is derived from an event's end date and the current clock reading; it is never stored.
type WindowState string

const (
	WindowOpen    WindowState = "open"
	WindowElapsed WindowState = "elapsed"
)

// Event is a created event record. Everything except Attendees and IsCompleted is fixed at creation.
type Event struct {
	ID                uint64   `json:"id" db:"id"`
	EventName         string   `json:"event_name" db:"name"`
	EventDate         int64    `json:"event_date" db:"event_date"`
	Speakers          []string `json:"speakers" db:"speakers"`
	EventLocationName string   `json:"event_location_name" db:"location_name"`
	Duration          int64    `json:"duration" db:"duration"`
	// EndDate closes the registration window: creation time + Duration, not EventDate + Duration.
	EndDate     int64  `json:"end_date" db:"end_date"`
	Attendees   uint64 `json:"attendees" db:"attendees"`
	IsCompleted bool   `json:"is_completed" db:"is_completed"`
}

// WindowAt reports whether registration is open at now.
func (e *Event) WindowAt(now int64) WindowState {
	if now < e.EndDate {
		return WindowOpen
	}
	return WindowElapsed
}

// Clone returns a deep copy so callers never share the speakers slice with a store.
func (e *Event) Clone() *Event {
	c := *e
	if e.Speakers != nil {
		c.Speakers = append([]string(nil), e.Speakers...)
	}
	return &c
}

// CreateEventParams carries the caller-supplied fields of a new event.
type CreateEventParams struct {
	EventName         string
	EventDate         int64
	Speakers          []string
	EventLocationName string
	Duration          int64
}

// CreateEventRequest is the JSON body of POST /events.
type CreateEventRequest struct {
	EventName         string   `json:"event_name"`
	EventDate         int64    `json:"event_date"`
	Speakers          []string `json:"speakers"`
	EventLocationName string   `json:"event_location_name"`
	Duration          int64    `json:"duration"`
}

// Params converts the request body into service parameters.
func (r CreateEventRequest) Params() CreateEventParams {
	return CreateEventParams{
		EventName:         r.EventName,
		EventDate:         r.EventDate,
		Speakers:          r.Speakers,
		EventLocationName: r.EventLocationName,
		Duration:          r.Duration,
	}
}

// EventResponse is an event plus its window state at the time of the read.
type EventResponse struct {
	*Event
	Window WindowState `json:"window"`
}
