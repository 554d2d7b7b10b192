package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	op  string
	err error
}

type fakeObserver struct {
	calls []recordedCall
}

func (f *fakeObserver) ObserveAPICall(op string, err error, _ time.Duration) {
	f.calls = append(f.calls, recordedCall{op: op, err: err})
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond)}, opts...)
	return NewClient(srv.URL+"/api/", opts...)
}

func TestClient_List(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/entregas", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": 7, "data_hora_solicitacao": "2025-03-10T08:30:00", "local_armazenagem": "Depósito Central",
			 "local_obra": "Obra Norte", "item_nome": "Cimento", "item_quantidade": "12.50",
			 "item_unidade_medida": "Saco", "responsavel_nome": null, "status": "pendente"},
			{"id": 8, "data_hora_solicitacao": "2025-03-10T07:00:00", "local_armazenagem": "Depósito Sul",
			 "local_obra": "Obra Leste", "item_nome": "Areia", "item_quantidade": 3,
			 "item_unidade_medida": "Metro Cúbico", "responsavel_nome": "Ana", "responsavel_telefone": "11987654321"}
		]`)
	})

	got, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(7), got[0].Key())
	assert.Equal(t, Quantity(12.5), got[0].ItemQuantity)
	assert.Equal(t, UnitBag, got[0].ItemUnit)
	assert.Empty(t, got[0].ResponsibleName)
	assert.Equal(t, "pendente", got[0].Status)
	assert.Equal(t, UnitCubicMeter, got[1].ItemUnit)
	assert.Equal(t, "11987654321", got[1].ResponsiblePhone)
}

func TestClient_ListEmptyNullBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})

	got, err := client.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_CreateSendsBodyWithoutID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/entregas", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasID := body["id"]
		assert.False(t, hasID)
		assert.Equal(t, "2025-03-10T08:30:00", body["data_hora_solicitacao"])
		assert.Equal(t, "(11) 98765-4321", body["responsavel_telefone"])
		assert.Equal(t, 2.5, body["item_quantidade"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 42, "data_hora_solicitacao": "2025-03-10T08:30:00", "item_nome": "Tijolo"}`)
	})

	d := sampleDelivery()
	d.ResponsiblePhone = "(11) 98765-4321"
	d.ItemQuantity = 2.5

	saved, err := client.Create(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, saved.Persisted())
	assert.Equal(t, int64(42), saved.Key())
}

func TestClient_CreateWithEmptyResponseKeepsInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	saved, err := client.Create(context.Background(), sampleDelivery())
	require.NoError(t, err)
	assert.False(t, saved.Persisted())
	assert.Equal(t, "Tijolo", saved.ItemName)
}

func TestClient_CreateIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Create(context.Background(), sampleDelivery())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestClient_UpdateRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/entregas/9", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	saved, err := client.Update(context.Background(), 9, sampleDelivery())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(9), saved.Key())
}

func TestClient_DeleteNotFound(t *testing.T) {
	var calls atomic.Int32
	obs := &fakeObserver{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		http.Error(w, "not found", http.StatusNotFound)
	}, WithObserver(obs))

	err := client.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not retried")
	require.Len(t, obs.calls, 1)
	assert.Equal(t, "delete", obs.calls[0].op)
	assert.Error(t, obs.calls[0].err)
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = io.WriteString(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.List(ctx)
	require.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/api", WithRetry(2, time.Millisecond))

	_, err := client.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPIUnavailable)
}

func sampleDelivery() Delivery {
	return Delivery{
		RequestedAt:         "2025-03-10T08:30:00",
		SourceLocation:      "Depósito Central",
		DestinationLocation: "Obra Norte",
		ItemName:            "Tijolo",
		ItemQuantity:        1000,
		ItemUnit:            UnitEach,
	}
}
