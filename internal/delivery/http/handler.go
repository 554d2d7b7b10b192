// Package deliveryhttp serves the delivery scheduling pages: the form, the
// day's table with its selection, and the PDF downloads.
package deliveryhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/delivery/export"
	"github.com/sgrm/scheduler/internal/platform/httpx"
	"github.com/sgrm/scheduler/internal/platform/locale"
	"github.com/sgrm/scheduler/internal/schedule"
	"github.com/sgrm/scheduler/internal/shared"
	"github.com/sgrm/scheduler/internal/view"
)

// Session keys holding the page state between requests.
const (
	sessionDayKey       = "deliveries.day"
	sessionSelectionKey = "deliveries.selected"
)

// User facing messages.
const (
	msgCreated        = "Entrega agendada com sucesso!"
	msgUpdated        = "Entrega atualizada com sucesso!"
	msgDeleted        = "Entrega excluída."
	msgSaveFailed     = "Não foi possível salvar a entrega."
	msgDeleteFailed   = "Não foi possível excluir a entrega."
	msgLoadFailed     = "Não foi possível carregar as entregas."
	msgNotFound       = "Entrega não encontrada."
	msgEmptySelection = "Por favor, selecione ao menos uma entrega para gerar o relatório."
	msgReportFailed   = "Não foi possível gerar o relatório."
	msgConfirmDelete  = "Tem certeza que deseja excluir a entrega?"
	msgEmptyDay       = "Nenhuma entrega agendada para esta data."
)

// Service is the delivery use-case surface the pages need.
type Service interface {
	List(ctx context.Context) ([]delivery.Delivery, error)
	Find(ctx context.Context, id int64) (delivery.Delivery, error)
	Save(ctx context.Context, d delivery.Delivery) (delivery.Delivery, bool, error)
	Delete(ctx context.Context, id int64) error
}

// Exporter renders delivery documents.
type Exporter interface {
	Manifest(ctx context.Context, day string, ds []delivery.Delivery) ([]byte, error)
	TransportOrder(ctx context.Context, d delivery.Delivery) ([]byte, error)
}

// ArchiveReader serves manifests archived by the worker.
type ArchiveReader interface {
	Load(ctx context.Context, day string) ([]byte, error)
}

// Handler manages delivery scheduling endpoints.
type Handler struct {
	logger    *slog.Logger
	service   Service
	exporter  Exporter
	archive   ArchiveReader
	templates *view.Engine
	csrf      *shared.CSRFManager
	loc       *time.Location
	validate  *validator.Validate
	clock     clockwork.Clock
}

// NewHandler builds Handler instance. archive may be nil.
func NewHandler(
	logger *slog.Logger,
	service Service,
	exporter Exporter,
	archive ArchiveReader,
	templates *view.Engine,
	csrf *shared.CSRFManager,
	loc *time.Location,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		logger:    logger,
		service:   service,
		exporter:  exporter,
		archive:   archive,
		templates: templates,
		csrf:      csrf,
		loc:       loc,
		validate:  newFormValidator(),
		clock:     clockwork.NewRealClock(),
	}
}

// ============================================================================
// PAGE
// ============================================================================

type tableRow struct {
	ID          int64
	When        string
	Destination string
	Item        string
	Quantity    string
	Unit        string
	Selected    bool
}

type indexPage struct {
	Day           string
	DayLabel      string
	Form          Form
	Errors        formErrors
	FormError     string
	LoadError     string
	Rows          []tableRow
	AllSelected   bool
	SelectedCount int
	EmptyMessage  string
	Suggestions   schedule.Suggestions
	Units         []delivery.Unit
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	day := h.switchDay(sess, r.URL.Query().Get("date"))

	var form *Form
	if raw := r.URL.Query().Get("edit"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Invalid delivery ID", http.StatusBadRequest)
			return
		}
		d, err := h.service.Find(r.Context(), id)
		switch {
		case errors.Is(err, delivery.ErrNotFound):
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: msgNotFound})
			http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
			return
		case err == nil:
			f := FormFromDelivery(d)
			form = &f
		}
	}
	if form == nil {
		f := NewForm(day)
		form = &f
	}
	h.renderIndex(w, r, http.StatusOK, *form, nil, "")
}

// renderIndex loads the collection and renders the page around form.
func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, status int, form Form, errs formErrors, formError string) {
	sess := shared.SessionFromContext(r.Context())
	day := h.currentDay(sess)
	page := indexPage{
		Day:          day,
		DayLabel:     locale.Date(day),
		Form:         form,
		Errors:       errs,
		FormError:    formError,
		EmptyMessage: msgEmptyDay,
		Units:        delivery.Units,
	}

	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list deliveries", slog.Any("error", err))
		page.LoadError = msgLoadFailed
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
	}

	visible := schedule.ForDay(all, day, h.loc)
	sel := h.selection(sess)
	page.Rows = make([]tableRow, 0, len(visible))
	for _, d := range visible {
		when := string(d.RequestedAt)
		if at, ok := d.RequestedAt.Parse(h.loc); ok {
			when = locale.DateTime(at)
		}
		page.Rows = append(page.Rows, tableRow{
			ID:          d.Key(),
			When:        when,
			Destination: d.DestinationLocation,
			Item:        d.ItemName,
			Quantity:    locale.Quantity(float64(d.ItemQuantity)),
			Unit:        string(d.ItemUnit),
			Selected:    d.Persisted() && sel.Contains(d.Key()),
		})
	}
	page.AllSelected = sel.AllSelected(visible)
	page.SelectedCount = len(schedule.ForReport(visible, sel, h.loc))
	page.Suggestions = schedule.DeriveSuggestions(all)

	title := "Programação de Caminhões"
	if form.Editing() {
		title = fmt.Sprintf("Editando Entrega (ID: %d)", form.ID)
	}
	h.render(w, r, status, "pages/deliveries/index.html", title, page)
}

// ============================================================================
// CREATE / UPDATE
// ============================================================================

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id int64) {
	form, err := FormFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form.ID = id

	if errs := form.Validate(h.validate); len(errs) > 0 {
		h.renderIndex(w, r, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	_, created, err := h.service.Save(r.Context(), form.Delivery())
	if err != nil {
		h.logger.Error("failed to save delivery", slog.Int64("id", id), slog.Any("error", err))
		status := http.StatusBadGateway
		if errors.Is(err, delivery.ErrInvalid) {
			status = http.StatusUnprocessableEntity
		}
		if errors.Is(err, delivery.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.renderIndex(w, r, status, form, nil, msgSaveFailed)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if created {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: msgCreated})
	} else {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashInfo, Message: msgUpdated})
	}
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

// ============================================================================
// DELETE
// ============================================================================

type confirmPage struct {
	Message  string
	When     string
	Quantity string
	Delivery delivery.Delivery
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Find(r.Context(), id)
	if err != nil {
		h.redirectOnLookupError(w, r, id, err)
		return
	}
	when := string(d.RequestedAt)
	if at, ok := d.RequestedAt.Parse(h.loc); ok {
		when = locale.DateTime(at)
	}
	h.render(w, r, http.StatusOK, "pages/deliveries/confirm_delete.html", "Excluir entrega", confirmPage{
		Message:  msgConfirmDelete,
		When:     when,
		Quantity: locale.Quantity(float64(d.ItemQuantity)),
		Delivery: d,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	err := h.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, delivery.ErrNotFound):
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: msgNotFound})
	case err != nil:
		h.logger.Error("failed to delete delivery", slog.Int64("id", id), slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashDanger, Message: msgDeleteFailed})
	default:
		sel := h.selection(sess)
		if sel.Contains(id) {
			sel.Toggle(id)
			h.storeSelection(sess, sel)
		}
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: msgDeleted})
	}
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

// ============================================================================
// SELECTION
// ============================================================================

func (h *Handler) toggleSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	sel := h.selection(sess)
	sel.Toggle(id)
	h.storeSelection(sess, sel)
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

func (h *Handler) selectAll(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	checked, _ := strconv.ParseBool(r.PostFormValue("checked"))

	var sel schedule.Selection
	if checked {
		all, err := h.service.List(r.Context())
		if err != nil {
			h.logger.Error("failed to list deliveries", slog.Any("error", err))
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashDanger, Message: msgLoadFailed})
			http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
			return
		}
		sel.SetAll(schedule.ForDay(all, h.currentDay(sess), h.loc), true)
	} else {
		sel.Clear()
	}
	h.storeSelection(sess, sel)
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

// ============================================================================
// DOCUMENTS
// ============================================================================

func (h *Handler) manifest(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	day := h.currentDay(sess)
	sel := h.selection(sess)
	if sel.Len() == 0 {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: msgEmptySelection})
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}

	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list deliveries", slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashDanger, Message: msgReportFailed})
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}
	selected := schedule.ForReport(schedule.ForDay(all, day, h.loc), sel, h.loc)
	if len(selected) == 0 {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: msgEmptySelection})
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}

	pdf, err := h.exporter.Manifest(r.Context(), day, selected)
	if err != nil {
		h.logger.Error("failed to render manifest", slog.String("day", day), slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashDanger, Message: msgReportFailed})
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}
	writePDF(w, export.ManifestFileName(day), "attachment", pdf)
}

func (h *Handler) archivedManifest(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if !locale.ValidDay(day) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "date must be YYYY-MM-DD")
		return
	}
	if h.archive == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "manifest archive disabled")
		return
	}
	pdf, err := h.archive.Load(r.Context(), day)
	if errors.Is(err, export.ErrArchiveMiss) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no manifest archived for "+day)
		return
	}
	if err != nil {
		h.logger.Error("failed to load archived manifest", slog.String("day", day), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writePDF(w, export.ManifestFileName(day), "attachment", pdf)
}

func (h *Handler) transportOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Find(r.Context(), id)
	if err != nil {
		h.redirectOnLookupError(w, r, id, err)
		return
	}
	pdf, err := h.exporter.TransportOrder(r.Context(), d)
	if err != nil {
		h.logger.Error("failed to render transport order", slog.Int64("id", id), slog.Any("error", err))
		sess := shared.SessionFromContext(r.Context())
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashDanger, Message: msgReportFailed})
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}
	writePDF(w, export.TransportOrderFileName(d), "inline", pdf)
}

// ============================================================================
// SUGGESTIONS
// ============================================================================

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list deliveries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, schedule.DeriveSuggestions(all))
}

// ============================================================================
// HELPERS
// ============================================================================

// switchDay applies a requested day. Moving to another day drops the
// selection.
func (h *Handler) switchDay(sess *shared.Session, requested string) string {
	current := h.currentDay(sess)
	if requested == "" || !locale.ValidDay(requested) {
		return current
	}
	if requested != current {
		sess.Set(sessionDayKey, requested)
		sess.Delete(sessionSelectionKey)
	}
	return requested
}

func (h *Handler) currentDay(sess *shared.Session) string {
	if day := sess.Get(sessionDayKey); locale.ValidDay(day) {
		return day
	}
	day := locale.Day(h.clock.Now(), h.loc)
	if sess != nil {
		sess.Set(sessionDayKey, day)
	}
	return day
}

func (h *Handler) selection(sess *shared.Session) schedule.Selection {
	return schedule.DecodeSelection(sess.Get(sessionSelectionKey))
}

func (h *Handler) storeSelection(sess *shared.Session, sel schedule.Selection) {
	if sel.Len() == 0 {
		sess.Delete(sessionSelectionKey)
		return
	}
	sess.Set(sessionSelectionKey, sel.Encode())
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid delivery ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) redirectOnLookupError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	sess := shared.SessionFromContext(r.Context())
	if errors.Is(err, delivery.ErrNotFound) {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: msgNotFound})
	} else {
		h.logger.Error("failed to find delivery", slog.Int64("id", id), slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashDanger, Message: msgLoadFailed})
	}
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, err := h.csrf.EnsureToken(sess)
	if err != nil {
		h.logger.Error("failed to issue csrf token", slog.Any("error", err))
	}
	td := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlashes(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, name, td); err != nil {
		h.logger.Error("failed to render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writePDF(w http.ResponseWriter, filename, disposition string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, disposition, filename, url.PathEscape(filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
