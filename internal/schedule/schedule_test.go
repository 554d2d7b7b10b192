package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgrm/scheduler/internal/delivery"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func mk(id int64, at string, item string) delivery.Delivery {
	d := delivery.Delivery{
		RequestedAt:         delivery.Timestamp(at),
		SourceLocation:      "Depósito Central",
		DestinationLocation: "Obra Norte",
		ItemName:            item,
		ItemQuantity:        1,
		ItemUnit:            delivery.UnitEach,
	}
	if id > 0 {
		d = d.WithID(id)
	}
	return d
}

func items(ds []delivery.Delivery) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ItemName
	}
	return out
}

func TestForDay(t *testing.T) {
	all := []delivery.Delivery{
		mk(1, "2025-03-10T14:00:00", "Cimento"),
		mk(2, "2025-03-11T07:00:00", "Areia"),
		mk(3, "2025-03-10T08:30:00", "Tijolo"),
		mk(4, "2025-03-10T08:30:00", "Telha"),
		mk(5, "2025-03-10Tsoon", "Brita"),
		mk(6, "2025-03-10T06:15:00.000Z", "Cal"),
	}

	got := ForDay(all, "2025-03-10", saoPaulo)
	assert.Equal(t, []string{"Cal", "Tijolo", "Telha", "Cimento", "Brita"}, items(got))
	assert.Equal(t, "Cimento", all[0].ItemName, "input must keep its order")

	assert.Empty(t, ForDay(all, "2025-03-12", saoPaulo))
	assert.Empty(t, ForDay(nil, "2025-03-10", saoPaulo))
}

func TestSortByRequestedAt_UnparsableLastAndStable(t *testing.T) {
	ds := []delivery.Delivery{
		mk(1, "x", "first-bad"),
		mk(2, "2025-03-10T09:00:00", "nine"),
		mk(3, "", "second-bad"),
		mk(4, "2025-03-10T08:00:00", "eight"),
	}
	SortByRequestedAt(ds, saoPaulo)
	assert.Equal(t, []string{"eight", "nine", "first-bad", "second-bad"}, items(ds))
}

func TestForReport(t *testing.T) {
	visible := []delivery.Delivery{
		mk(3, "2025-03-10T10:00:00", "Tijolo"),
		mk(1, "2025-03-10T08:00:00", "Cimento"),
		mk(0, "2025-03-10T07:00:00", "Rascunho"),
		mk(2, "2025-03-10T09:00:00", "Areia"),
	}
	sel := NewSelection(3, 1, 99)

	got := ForReport(visible, sel, saoPaulo)
	assert.Equal(t, []string{"Cimento", "Tijolo"}, items(got))

	assert.Empty(t, ForReport(visible, NewSelection(), saoPaulo))
}

func TestDeriveSuggestions(t *testing.T) {
	a := mk(1, "2025-03-10T08:00:00", "Cimento")
	a.ResponsibleName = "Ana"
	a.ResponsiblePhone = "11987654321"
	b := mk(2, "2025-03-11T08:00:00", "Areia")
	b.SourceLocation = "Depósito Sul"
	b.DestinationLocation = "Obra Leste"
	c := mk(3, "2025-03-12T08:00:00", "Cimento")
	c.ResponsibleName = "Bruno"
	d := mk(4, "2025-03-12T09:00:00", "")
	d.ResponsibleName = "Ana"
	d.ResponsiblePhone = "(21) 99999-0000"

	s := DeriveSuggestions([]delivery.Delivery{a, b, c, d})
	assert.Equal(t, []string{"Depósito Central", "Depósito Sul"}, s.Origins)
	assert.Equal(t, []string{"Obra Norte", "Obra Leste"}, s.Destinations)
	assert.Equal(t, []string{"Cimento", "Areia"}, s.Items)
	assert.Equal(t, []string{"Ana", "Bruno"}, s.Responsibles)
	assert.Equal(t, []string{"11987654321", "(21) 99999-0000"}, s.Phones)

	phone, ok := s.PhoneFor("Ana")
	require.True(t, ok)
	assert.Equal(t, "(11) 98765-4321", phone)

	_, ok = s.PhoneFor("Bruno")
	assert.False(t, ok, "names recorded without phone have no contact")
	_, ok = s.PhoneFor("Carla")
	assert.False(t, ok)
}

func TestDeriveSuggestions_Empty(t *testing.T) {
	s := DeriveSuggestions(nil)
	assert.NotNil(t, s.Origins)
	assert.Empty(t, s.Origins)
	assert.Empty(t, s.Phones)
}

func TestFormatPhone(t *testing.T) {
	tests := map[string]string{
		"11987654321":      "(11) 98765-4321",
		"(11) 98765-4321":  "(11) 98765-4321",
		"11 9 8765 4321":   "(11) 98765-4321",
		"1198765432":       "1198765432",
		"119876543210":     "119876543210",
		"":                 "",
		"ramal 22":         "ramal 22",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPhone(in), in)
	}
}

func TestSelection(t *testing.T) {
	visible := []delivery.Delivery{
		mk(1, "2025-03-10T08:00:00", "a"),
		mk(2, "2025-03-10T09:00:00", "b"),
	}

	var sel Selection
	assert.False(t, sel.AllSelected(visible))
	assert.True(t, sel.Toggle(1))
	assert.True(t, sel.Contains(1))
	assert.False(t, sel.AllSelected(visible))
	assert.True(t, sel.Toggle(2))
	assert.True(t, sel.AllSelected(visible))
	assert.False(t, sel.Toggle(1))
	assert.Equal(t, []int64{2}, sel.IDs())
	assert.False(t, sel.Toggle(0), "unsaved deliveries cannot be selected")

	sel.SetAll(visible, true)
	assert.Equal(t, 2, sel.Len())
	sel.SetAll(visible, false)
	assert.Equal(t, 0, sel.Len())

	assert.False(t, NewSelection(1).AllSelected(nil), "empty view is never fully selected")
}

func TestSelection_EncodeDecode(t *testing.T) {
	sel := NewSelection(9, 3, 7)
	assert.Equal(t, "3,7,9", sel.Encode())

	decoded := DecodeSelection("3, 7,abc,,-1,9")
	assert.Equal(t, []int64{3, 7, 9}, decoded.IDs())
	assert.Equal(t, 0, DecodeSelection("").Len())
	assert.Equal(t, "", NewSelection().Encode())
}
