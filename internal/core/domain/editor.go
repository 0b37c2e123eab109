package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Mode is the interaction state of the map editor.
type Mode string

const (
	ModeBrowse        Mode = "browse"
	ModeAddPending    Mode = "add_pending"
	ModeAddPositioned Mode = "add_positioned"
	ModeEditing       Mode = "editing"
)

// EventType names an editor event.
type EventType string

const (
	EventToggleAddMode EventType = "toggle_add_mode"
	EventClickMap      EventType = "click_map"
	EventSubmitAdd     EventType = "submit_add"
	EventStartEdit     EventType = "start_edit"
	EventSetEditName   EventType = "set_edit_name"
	EventSetEditLat    EventType = "set_edit_lat"
	EventSetEditLng    EventType = "set_edit_lng"
	EventSubmitEdit    EventType = "submit_edit"
	EventCancelEdit    EventType = "cancel_edit"
	EventDelete        EventType = "delete"
	EventSetSearch     EventType = "set_search"
)

// Event is a user interaction. Only the fields relevant to Type are read.
type Event struct {
	Type  EventType `json:"type"`
	ID    string    `json:"id,omitempty"`
	Name  string    `json:"name,omitempty"`
	Lat   float64   `json:"lat,omitempty"`
	Lng   float64   `json:"lng,omitempty"`
	Query string    `json:"query,omitempty"`
}

// EditorState is the whole application state: the marker collection plus
// the form fields and mode flags around it. Values are treated as immutable;
// Apply always returns a fresh state.
type EditorState struct {
	Markers         []Marker  `json:"markers"`
	Mode            Mode      `json:"mode"`
	PendingPosition *Position `json:"pending_position,omitempty"`
	EditingID       string    `json:"editing_id,omitempty"`
	EditName        string    `json:"edit_name,omitempty"`
	EditPosition    *Position `json:"edit_position,omitempty"`
	Search          string    `json:"search"`
}

// NewEditorState returns a browsing state over markers.
func NewEditorState(markers []Marker) EditorState {
	return EditorState{Markers: slices.Clone(markers), Mode: ModeBrowse}
}

// PanningEnabled reports whether map dragging is allowed. It is disabled
// while a new marker is being placed.
func (s EditorState) PanningEnabled() bool {
	return s.Mode != ModeAddPending && s.Mode != ModeAddPositioned
}

// Visible returns the markers matching the current search.
func (s EditorState) Visible() []Marker {
	return Filter(s.Markers, s.Search)
}

// Apply maps (state, event) to the next state. On error the returned state
// equals the input. A blank name on EventSubmitAdd is a silent no-op.
// The result never aliases the input's marker slice or positions.
func Apply(s EditorState, ev Event) (EditorState, error) {
	next, err := apply(s, ev)
	next.Markers = slices.Clone(next.Markers)
	next.PendingPosition = clonePosition(next.PendingPosition)
	next.EditPosition = clonePosition(next.EditPosition)
	return next, err
}

func clonePosition(p *Position) *Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func apply(s EditorState, ev Event) (EditorState, error) {
	switch ev.Type {
	case EventToggleAddMode:
		next := s.browse()
		if s.Mode == ModeBrowse || s.Mode == ModeEditing {
			next.Mode = ModeAddPending
		}
		return next, nil

	case EventClickMap:
		if s.Mode != ModeAddPending && s.Mode != ModeAddPositioned {
			return s, nil
		}
		pos := Position{Lat: ev.Lat, Lng: ev.Lng}
		if !pos.Valid() {
			return s, fmt.Errorf("%w: %v", ErrInvalidPosition, pos)
		}
		next := s
		next.Mode = ModeAddPositioned
		next.PendingPosition = &pos
		return next, nil

	case EventSubmitAdd:
		if s.Mode != ModeAddPositioned || s.PendingPosition == nil {
			return s, fmt.Errorf("%w: submit add in %s", ErrInvalidTransition, s.Mode)
		}
		if strings.TrimSpace(ev.Name) == "" {
			return s, nil
		}
		next := s.browse()
		next.Markers = append(slices.Clone(s.Markers), NewMarker(ev.Name, *s.PendingPosition))
		return next, nil

	case EventStartEdit:
		if s.Mode != ModeBrowse && s.Mode != ModeEditing {
			return s, fmt.Errorf("%w: start edit in %s", ErrInvalidTransition, s.Mode)
		}
		i := IndexOf(s.Markers, ev.ID)
		if i < 0 {
			return s, fmt.Errorf("%w: %s", ErrMarkerNotFound, ev.ID)
		}
		m := s.Markers[i]
		next := s
		next.Mode = ModeEditing
		next.EditingID = m.ID
		next.EditName = m.Name
		next.EditPosition = &m.Position
		return next, nil

	case EventSetEditName, EventSetEditLat, EventSetEditLng:
		if s.Mode != ModeEditing {
			return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Type, s.Mode)
		}
		next := s
		pos := *s.EditPosition
		switch ev.Type {
		case EventSetEditName:
			next.EditName = ev.Name
		case EventSetEditLat:
			pos.Lat = ev.Lat
		case EventSetEditLng:
			pos.Lng = ev.Lng
		}
		next.EditPosition = &pos
		return next, nil

	case EventSubmitEdit:
		if s.Mode != ModeEditing {
			return s, fmt.Errorf("%w: submit edit in %s", ErrInvalidTransition, s.Mode)
		}
		if !s.EditPosition.Valid() {
			return s, fmt.Errorf("%w: %v", ErrInvalidPosition, *s.EditPosition)
		}
		i := IndexOf(s.Markers, s.EditingID)
		if i < 0 {
			return s, fmt.Errorf("%w: %s", ErrMarkerNotFound, s.EditingID)
		}
		next := s.browse()
		next.Markers = slices.Clone(s.Markers)
		next.Markers[i] = Marker{ID: s.EditingID, Name: s.EditName, Position: *s.EditPosition}
		return next, nil

	case EventCancelEdit:
		if s.Mode != ModeEditing {
			return s, fmt.Errorf("%w: cancel edit in %s", ErrInvalidTransition, s.Mode)
		}
		return s.browse(), nil

	case EventDelete:
		i := IndexOf(s.Markers, ev.ID)
		if i < 0 {
			return s, fmt.Errorf("%w: %s", ErrMarkerNotFound, ev.ID)
		}
		next := s
		if s.Mode == ModeEditing && s.EditingID == ev.ID {
			next = s.browse()
		}
		next.Markers = slices.Delete(slices.Clone(s.Markers), i, i+1)
		return next, nil

	case EventSetSearch:
		next := s
		next.Search = ev.Query
		return next, nil
	}

	return s, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev.Type)
}

// browse clears every form field and returns to ModeBrowse, keeping the
// collection and search query.
func (s EditorState) browse() EditorState {
	return EditorState{Markers: s.Markers, Mode: ModeBrowse, Search: s.Search}
}
