// Package catalog holds collection items and a client for the amiibo catalog API.
package catalog

import (
	"encoding/json"
	"fmt"
)

// ItemID identifies a catalog item by its head and tail hex identifiers.
type ItemID struct {
	Head string `json:"head"`
	Tail string `json:"tail"`
}

func (id ItemID) String() string {
	return id.Head + id.Tail
}

// ListItem is one figurine in a collection list. Fields are copied from a
// catalog search result when the item is added.
type ListItem struct {
	Head         string `json:"head"`
	Tail         string `json:"tail"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Character    string `json:"character"`
	AmiiboSeries string `json:"amiiboSeries"`
	GameSeries   string `json:"gameSeries"`
	Type         string `json:"type"`
}

// ID returns the item identity.
func (i ListItem) ID() ItemID {
	return ItemID{Head: i.Head, Tail: i.Tail}
}

// List is a named, ordered collection of items.
type List struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
	Items     []ListItem `json:"items"`
}

// Contains reports whether an item with the given identity is in the list.
func (l *List) Contains(id ItemID) bool {
	for _, it := range l.Items {
		if it.ID() == id {
			return true
		}
	}
	return false
}

// Add appends the item unless it is already present. Returns false for duplicates.
func (l *List) Add(item ListItem) bool {
	if l.Contains(item.ID()) {
		return false
	}
	l.Items = append(l.Items, item)
	return true
}

// Release holds regional release dates.
type Release struct {
	AU *string `json:"au"`
	EU *string `json:"eu"`
	JP *string `json:"jp"`
	NA *string `json:"na"`
}

// Amiibo is a catalog API record.
type Amiibo struct {
	AmiiboSeries string  `json:"amiiboSeries"`
	Character    string  `json:"character"`
	GameSeries   string  `json:"gameSeries"`
	Head         string  `json:"head"`
	Image        string  `json:"image"`
	Name         string  `json:"name"`
	Release      Release `json:"release"`
	Tail         string  `json:"tail"`
	Type         string  `json:"type"`
}

// ToListItem copies the fields a list keeps from a catalog record.
func (a Amiibo) ToListItem() ListItem {
	return ListItem{
		Head:         a.Head,
		Tail:         a.Tail,
		Name:         a.Name,
		Image:        a.Image,
		Character:    a.Character,
		AmiiboSeries: a.AmiiboSeries,
		GameSeries:   a.GameSeries,
		Type:         a.Type,
	}
}

// amiiboResponse accepts both a single object and an array under "amiibo";
// the API returns a single object when queried by id.
type amiiboResponse struct {
	Amiibo []Amiibo
}

func (r *amiiboResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amiibo json.RawMessage `json:"amiibo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal amiibo response: %w", err)
	}
	if len(raw.Amiibo) == 0 || string(raw.Amiibo) == "null" {
		return nil
	}
	if raw.Amiibo[0] == '[' {
		if err := json.Unmarshal(raw.Amiibo, &r.Amiibo); err != nil {
			return fmt.Errorf("unmarshal amiibo list: %w", err)
		}
		return nil
	}
	var single Amiibo
	if err := json.Unmarshal(raw.Amiibo, &single); err != nil {
		return fmt.Errorf("unmarshal amiibo: %w", err)
	}
	r.Amiibo = []Amiibo{single}
	return nil
}

// KeyName is a key/name pair used by the series, type and character endpoints.
type KeyName struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type keyNameResponse struct {
	Amiibo []KeyName `json:"amiibo"`
}
