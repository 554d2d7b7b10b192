package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgrm/scheduler/internal/delivery"
)

func TestResolveDay(t *testing.T) {
	loc := time.UTC
	day, err := resolveDay("2025-03-10", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", day)

	day, err = resolveDay("", loc)
	require.NoError(t, err)
	assert.Len(t, day, len("2006-01-02"))

	_, err = resolveDay("10/03/2025", loc)
	assert.Error(t, err)
}

func TestPrintSchedule(t *testing.T) {
	ds := []delivery.Delivery{
		{
			RequestedAt:         "2025-03-10T08:30:00",
			SourceLocation:      "Depósito Central",
			DestinationLocation: "Obra Norte",
			ItemName:            "Cimento",
			ItemQuantity:        12.5,
			ItemUnit:            delivery.UnitBag,
			ResponsibleName:     "Ana",
			ResponsiblePhone:    "(11) 98765-4321",
		},
	}
	ds[0] = ds[0].WithID(7)

	buf := &bytes.Buffer{}
	require.NoError(t, printSchedule(buf, "2025-03-10", ds, time.UTC))
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "08:30")
	assert.Contains(t, out, "12,5 Saco")
	assert.Contains(t, out, "(11) 98765-4321")

	buf.Reset()
	require.NoError(t, printSchedule(buf, "2025-03-10", nil, time.UTC))
	assert.Equal(t, "Nenhuma entrega agendada para 10/03/2025.\n", buf.String())
}

func TestListCommand(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entregas", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"id": 2, "data_hora_solicitacao": "2025-03-10T10:00:00", "local_armazenagem": "Depósito Sul",
			 "local_obra": "Obra Leste", "item_nome": "Areia", "item_quantidade": 3, "item_unidade_medida": "Metro Cúbico"},
			{"id": 1, "data_hora_solicitacao": "2025-03-10T07:00:00", "local_armazenagem": "Depósito Central",
			 "local_obra": "Obra Norte", "item_nome": "Tijolo", "item_quantidade": 1000, "item_unidade_medida": "Unidade"},
			{"id": 3, "data_hora_solicitacao": "2025-03-11T07:00:00", "local_armazenagem": "Depósito Central",
			 "local_obra": "Obra Oeste", "item_nome": "Brita", "item_quantidade": 5, "item_unidade_medida": "Metro Cúbico"}
		]`)
	}))
	t.Cleanup(api.Close)

	t.Setenv("DELIVERY_API_URL", api.URL+"/api")
	t.Setenv("APP_TIMEZONE", "UTC")

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"list", "--day", "2025-03-10"})
	require.NoError(t, cmd.Execute())

	body := out.String()
	assert.Contains(t, body, "Tijolo")
	assert.Contains(t, body, "Areia")
	assert.NotContains(t, body, "Brita")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Tijolo")), bytes.Index(out.Bytes(), []byte("Areia")))
}

func TestListCommand_RejectsBadDay(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"list", "--day", "amanhã"})
	assert.Error(t, cmd.Execute())
}
