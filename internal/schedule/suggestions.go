package schedule

import (
	"strings"

	"github.com/sgrm/scheduler/internal/delivery"
)

// Suggestions holds the autocomplete values offered by the delivery form.
// Each list is distinct and keeps first-seen order.
type Suggestions struct {
	Origins      []string `json:"origens"`
	Destinations []string `json:"destinos"`
	Items        []string `json:"items"`
	Responsibles []string `json:"responsaveis"`
	Phones       []string `json:"telefones"`

	// Contacts maps a responsible name to the first phone recorded with it.
	Contacts map[string]string `json:"contatos"`
}

// DeriveSuggestions collects the distinct values of the whole collection.
// Empty values are skipped for every list.
func DeriveSuggestions(all []delivery.Delivery) Suggestions {
	var (
		origins      = newDistinct(len(all))
		destinations = newDistinct(len(all))
		items        = newDistinct(len(all))
		responsibles = newDistinct(len(all))
		phones       = newDistinct(len(all))
	)
	contacts := make(map[string]string)
	for _, d := range all {
		origins.add(d.SourceLocation)
		destinations.add(d.DestinationLocation)
		items.add(d.ItemName)
		responsibles.add(d.ResponsibleName)
		phones.add(d.ResponsiblePhone)

		name := strings.TrimSpace(d.ResponsibleName)
		phone := strings.TrimSpace(d.ResponsiblePhone)
		if name == "" || phone == "" {
			continue
		}
		if _, seen := contacts[name]; !seen {
			contacts[name] = phone
		}
	}
	return Suggestions{
		Origins:      origins.values,
		Destinations: destinations.values,
		Items:        items.values,
		Responsibles: responsibles.values,
		Phones:       phones.values,
		Contacts:     contacts,
	}
}

// PhoneFor returns the formatted phone known for a responsible name.
// Unknown names report false so the caller can clear the phone field.
func (s Suggestions) PhoneFor(name string) (string, bool) {
	phone, ok := s.Contacts[strings.TrimSpace(name)]
	if !ok {
		return "", false
	}
	return FormatPhone(phone), true
}

type distinct struct {
	seen   map[string]struct{}
	values []string
}

func newDistinct(capacity int) *distinct {
	return &distinct{seen: make(map[string]struct{}, capacity), values: make([]string, 0)}
}

func (d *distinct) add(v string) {
	if strings.TrimSpace(v) == "" {
		return
	}
	if _, ok := d.seen[v]; ok {
		return
	}
	d.seen[v] = struct{}{}
	d.values = append(d.values, v)
}
