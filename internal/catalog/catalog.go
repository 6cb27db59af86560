// Package catalog holds the static, read-only hotel list the assistant can
// suggest and book.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hotel-agent/internal/domain"
	"hotel-agent/internal/textnorm"
)

//go:embed hotels.json
var defaultHotels []byte

// Catalog is safe for concurrent use; nothing mutates it after Load.
type Catalog struct {
	hotels []domain.Hotel
	byID   map[string]int
	byName map[string]int
	cities []string
	json   string
}

// Default loads the hotels embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultHotels)
}

// Load parses and validates a JSON array of hotels.
func Load(data []byte) (*Catalog, error) {
	var hotels []domain.Hotel
	if err := json.Unmarshal(data, &hotels); err != nil {
		return nil, fmt.Errorf("catalog: decode hotels: %w", err)
	}
	if len(hotels) == 0 {
		return nil, errors.New("catalog: no hotels")
	}

	c := &Catalog{
		hotels: hotels,
		byID:   make(map[string]int, len(hotels)),
		byName: make(map[string]int, len(hotels)),
	}
	seenCity := map[string]bool{}
	for i, h := range hotels {
		if err := validate(h); err != nil {
			return nil, fmt.Errorf("catalog: hotel %d: %w", i, err)
		}
		if _, dup := c.byID[h.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate hotel id %q", h.ID)
		}
		c.byID[h.ID] = i
		c.byName[textnorm.Normalize(h.Name)] = i
		if !seenCity[h.City] {
			seenCity[h.City] = true
			c.cities = append(c.cities, h.City)
		}
	}

	raw, err := json.Marshal(hotels)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode hotels: %w", err)
	}
	c.json = string(raw)
	return c, nil
}

func validate(h domain.Hotel) error {
	switch {
	case strings.TrimSpace(h.ID) == "":
		return errors.New("id is required")
	case strings.TrimSpace(h.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(h.City) == "":
		return errors.New("city is required")
	case h.Stars < 1 || h.Stars > 5:
		return fmt.Errorf("stars %d out of range 1..5", h.Stars)
	case h.Price <= 0:
		return fmt.Errorf("price %v must be positive", h.Price)
	case h.Rating < 0 || h.Rating > 5:
		return fmt.Errorf("rating %v out of range 0..5", h.Rating)
	case h.AvailableRooms < 0:
		return fmt.Errorf("available_rooms %d must not be negative", h.AvailableRooms)
	}
	return nil
}

// All returns a copy of the hotels in catalog order.
func (c *Catalog) All() []domain.Hotel {
	out := make([]domain.Hotel, len(c.hotels))
	copy(out, c.hotels)
	return out
}

func (c *Catalog) ByID(id string) (domain.Hotel, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Hotel{}, false
	}
	return c.hotels[i], true
}

// ByName matches a hotel name case-insensitively after normalization. A
// leading "the" in the query is tolerated so "book the ocean view" resolves.
func (c *Catalog) ByName(name string) (domain.Hotel, bool) {
	key := textnorm.Normalize(name)
	if key == "" {
		return domain.Hotel{}, false
	}
	if i, ok := c.byName[key]; ok {
		return c.hotels[i], true
	}
	if rest, ok := strings.CutPrefix(key, "the "); ok {
		if i, ok := c.byName[rest]; ok {
			return c.hotels[i], true
		}
	}
	return domain.Hotel{}, false
}

// ByCity returns the hotels in city, case-insensitively, in catalog order.
func (c *Catalog) ByCity(city string) []domain.Hotel {
	var out []domain.Hotel
	for _, h := range c.hotels {
		if strings.EqualFold(h.City, strings.TrimSpace(city)) {
			out = append(out, h)
		}
	}
	return out
}

// City returns the canonical spelling of a known city.
func (c *Catalog) City(name string) (string, bool) {
	key := textnorm.Normalize(name)
	for _, city := range c.cities {
		if strings.ToLower(city) == key {
			return city, true
		}
	}
	return "", false
}

// Cities lists the known cities in first-seen order.
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.cities))
	copy(out, c.cities)
	return out
}

// JSON is the full catalog rendered once for prompt inputs.
func (c *Catalog) JSON() string {
	return c.json
}
