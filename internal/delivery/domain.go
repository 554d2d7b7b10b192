// Package delivery models scheduled material deliveries and talks to the
// remote delivery API that owns them.
package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// UNITS OF MEASURE
// ============================================================================

// Unit is the unit of measure of the delivered item.
type Unit string

const (
	UnitEach        Unit = "Unidade"
	UnitBox         Unit = "Caixa"
	UnitPiece       Unit = "Peça"
	UnitMeter       Unit = "Metro"
	UnitSquareMeter Unit = "Metro Quadrado"
	UnitCubicMeter  Unit = "Metro Cúbico"
	UnitKilogram    Unit = "Kg"
	UnitBag         Unit = "Saco"
	UnitRoll        Unit = "Rolo"
	UnitCan         Unit = "Lata"
	UnitKit         Unit = "Kit"
	UnitSet         Unit = "Jogo"
	UnitPack        Unit = "Pacote"
	UnitBale        Unit = "Fardo"
	UnitPair        Unit = "Par"
)

// DefaultUnit is preselected on new deliveries.
const DefaultUnit = UnitEach

// Units lists every accepted unit in display order.
var Units = []Unit{
	UnitEach, UnitBox, UnitPiece, UnitMeter, UnitSquareMeter, UnitCubicMeter,
	UnitKilogram, UnitBag, UnitRoll, UnitCan, UnitKit, UnitSet, UnitPack,
	UnitBale, UnitPair,
}

// IsValid checks if the unit is one of Units.
func (u Unit) IsValid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// ============================================================================
// TIMESTAMP
// ============================================================================

// Timestamp is the requested date/time exactly as exchanged with the API,
// e.g. "2025-03-10T08:30:00". The API may append seconds fractions or a zone.
type Timestamp string

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// NewTimestamp joins a YYYY-MM-DD date and a HH:MM clock the way the form submits them.
func NewTimestamp(date, clock string) Timestamp {
	return Timestamp(date + "T" + clock + ":00")
}

// Day returns the YYYY-MM-DD prefix used for day filtering.
func (t Timestamp) Day() string {
	s := string(t)
	if len(s) < 10 {
		return s
	}
	return s[:10]
}

// Clock returns the HH:MM part of the raw value, or "" when absent.
func (t Timestamp) Clock() string {
	s := string(t)
	idx := strings.IndexAny(s, "T ")
	if idx < 0 || len(s) < idx+6 {
		return ""
	}
	return s[idx+1 : idx+6]
}

// Parse interprets the timestamp. Values without a zone are read as wall
// clock time in loc; zoned values are converted to loc.
func (t Timestamp) Parse(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(string(t))
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return parsed.In(loc), true
		}
	}
	return time.Time{}, false
}

// ============================================================================
// QUANTITY
// ============================================================================

// Quantity is the item amount. Some API backends serialise numeric columns
// as strings, so both forms are accepted on decode.
type Quantity float64

// UnmarshalJSON accepts 12, 12.5 and "12.50".
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*q = 0
			return nil
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return fmt.Errorf("delivery: quantity %q: %w", s, err)
		}
		*q = Quantity(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*q = Quantity(v)
	return nil
}

// ============================================================================
// DELIVERY ENTITY
// ============================================================================

// Delivery is one scheduled truck delivery of material from a storage
// location to a construction site.
type Delivery struct {
	ID                  *int64    `json:"id,omitempty"`
	RequestedAt         Timestamp `json:"data_hora_solicitacao" validate:"required"`
	SourceLocation      string    `json:"local_armazenagem" validate:"required,max=200"`
	DestinationLocation string    `json:"local_obra" validate:"required,max=200"`
	ItemName            string    `json:"item_nome" validate:"required,max=200"`
	ItemQuantity        Quantity  `json:"item_quantidade" validate:"gt=0"`
	ItemUnit            Unit      `json:"item_unidade_medida" validate:"required,unit"`
	ResponsibleName     string    `json:"responsavel_nome,omitempty" validate:"omitempty,max=200"`
	ResponsiblePhone    string    `json:"responsavel_telefone,omitempty" validate:"omitempty,max=30"`
	Status              string    `json:"status,omitempty"`
}

// Persisted reports whether the remote store assigned an identifier.
func (d Delivery) Persisted() bool {
	return d.ID != nil
}

// Key returns the identifier, or 0 for unsaved deliveries.
func (d Delivery) Key() int64 {
	if d.ID == nil {
		return 0
	}
	return *d.ID
}

// WithID returns a copy of d carrying id.
func (d Delivery) WithID(id int64) Delivery {
	d.ID = &id
	return d
}

// writeBody is the request document for POST and PUT. The identifier only
// travels in the resource path.
type writeBody struct {
	RequestedAt         Timestamp `json:"data_hora_solicitacao"`
	SourceLocation      string    `json:"local_armazenagem"`
	DestinationLocation string    `json:"local_obra"`
	ItemName            string    `json:"item_nome"`
	ItemQuantity        float64   `json:"item_quantidade"`
	ItemUnit            Unit      `json:"item_unidade_medida"`
	ResponsibleName     string    `json:"responsavel_nome"`
	ResponsiblePhone    string    `json:"responsavel_telefone"`
	Status              string    `json:"status,omitempty"`
}

func (d Delivery) body() writeBody {
	return writeBody{
		RequestedAt:         d.RequestedAt,
		SourceLocation:      d.SourceLocation,
		DestinationLocation: d.DestinationLocation,
		ItemName:            d.ItemName,
		ItemQuantity:        float64(d.ItemQuantity),
		ItemUnit:            d.ItemUnit,
		ResponsibleName:     d.ResponsibleName,
		ResponsiblePhone:    d.ResponsiblePhone,
		Status:              d.Status,
	}
}
