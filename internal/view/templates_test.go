package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgrm/scheduler/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestEngine_RenderStatus(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.RenderStatus(rec, http.StatusNotFound, "pages/error.html", TemplateData{
		Title: "Não encontrado",
		Flash: []shared.FlashMessage{{Kind: "warning", Message: "Entrega não encontrada."}},
		Data:  map[string]any{"Message": "Entrega não encontrada."},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Entrega não encontrada.")
	assert.Contains(t, rec.Body.String(), "alert-warning")
}

func TestEngine_RenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/missing.html", TemplateData{})
	require.Error(t, err)
	assert.Empty(t, rec.Body.String())
}

func TestFuncs(t *testing.T) {
	f := Funcs()
	assert.Equal(t, "alert-success", f["flashClass"].(func(string) string)("success"))
	assert.Equal(t, "alert-secondary", f["flashClass"].(func(string) string)("other"))
	assert.Equal(t, "10/03/2025", f["dayLabel"].(func(string) string)("2025-03-10"))
}
