package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Hotel is a catalog record. Values are never mutated after load.
type Hotel struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Stars          int      `json:"stars"`
	Price          float64  `json:"price"`
	Amenities      []string `json:"amenities"`
	Description    string   `json:"description"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Image          string   `json:"image"`
	AvailableRooms int      `json:"available_rooms"`
	Rating         float64  `json:"rating"`
	LocationURL    string   `json:"location_url"`
}

// HotelRefKind tags how a hotel reached a message.
type HotelRefKind int

const (
	// RefDirect is a hotel attached by a direct lookup.
	RefDirect HotelRefKind = iota
	// RefSuggested is a hotel attached by the suggestion flow with a generated reason.
	RefSuggested
)

// HotelRef is either Direct(hotel) or Suggested(hotel, reason).
// On the wire a direct reference is the bare hotel object and a suggested one is
// {"hotel": {...}, "reason": "..."}.
type HotelRef struct {
	kind   HotelRefKind
	hotel  Hotel
	reason string
}

func Direct(h Hotel) HotelRef {
	return HotelRef{kind: RefDirect, hotel: h}
}

func Suggested(h Hotel, reason string) HotelRef {
	return HotelRef{kind: RefSuggested, hotel: h, reason: reason}
}

func (r HotelRef) Kind() HotelRefKind { return r.kind }

func (r HotelRef) Hotel() Hotel { return r.hotel }

// Reason returns the suggestion reason; ok is false for direct references.
func (r HotelRef) Reason() (reason string, ok bool) {
	if r.kind != RefSuggested {
		return "", false
	}
	return r.reason, true
}

type suggestedWire struct {
	Hotel  *Hotel `json:"hotel"`
	Reason string `json:"reason"`
}

func (r HotelRef) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RefDirect:
		return json.Marshal(r.hotel)
	case RefSuggested:
		h := r.hotel
		return json.Marshal(suggestedWire{Hotel: &h, Reason: r.reason})
	default:
		return nil, fmt.Errorf("domain: unknown hotel ref kind %d", r.kind)
	}
}

func (r *HotelRef) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("domain: decode hotel ref: %w", err)
	}
	if raw, ok := probe["hotel"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var w suggestedWire
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("domain: decode suggested hotel: %w", err)
		}
		if w.Hotel == nil {
			return errors.New("domain: suggested hotel missing hotel")
		}
		*r = Suggested(*w.Hotel, w.Reason)
		return nil
	}
	var h Hotel
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("domain: decode hotel: %w", err)
	}
	*r = Direct(h)
	return nil
}
