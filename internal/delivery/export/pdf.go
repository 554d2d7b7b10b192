// Package export renders delivery documents (the daily truck manifest and
// single transport orders) to PDF.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/platform/locale"
	"github.com/sgrm/scheduler/internal/view"
	"github.com/sgrm/scheduler/report"
	"github.com/sgrm/scheduler/web"
)

// Document kinds, also used as metric labels.
const (
	KindManifest       = "manifest"
	KindTransportOrder = "transport_order"
)

// DefaultCompany heads transport orders when none is configured.
const DefaultCompany = "SGRM Transportes"

// ErrEmptyManifest occurs when a manifest is requested without deliveries.
var ErrEmptyManifest = errors.New("manifest has no deliveries")

// Renderer converts an HTML document to PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, doc report.Document) ([]byte, error)
}

// DocumentObserver is told about each rendered document.
type DocumentObserver interface {
	ObserveDocument(kind string, err error)
}

// ManifestPayload is the data behind the daily manifest.
type ManifestPayload struct {
	Title       string
	Day         string
	DayLabel    string
	GeneratedAt time.Time
	Rows        []ManifestRow
}

// ManifestRow is one numbered manifest line.
type ManifestRow struct {
	Number      int
	Clock       string
	Destination string
	Item        string
	Quantity    string
	Unit        string
	Source      string
	Responsible string
	Phone       string
}

// TransportOrderPayload is the data behind a single transport order.
type TransportOrderPayload struct {
	Company     string
	Number      string
	RequestedAt string
	Source      string
	Destination string
	Item        string
	Quantity    string
	Unit        string
	Responsible string
	Phone       string
}

// PDFExporter renders delivery documents through a Renderer.
type PDFExporter struct {
	renderer  Renderer
	observer  DocumentObserver
	company   string
	loc       *time.Location
	templates *template.Template
}

// NewPDFExporter creates a PDFExporter with parsed templates. observer may be nil.
func NewPDFExporter(renderer Renderer, company string, loc *time.Location, observer DocumentObserver) (*PDFExporter, error) {
	if company == "" {
		company = DefaultCompany
	}
	if loc == nil {
		loc = time.Local
	}
	tpl, err := template.New("reports").ParseFS(web.Templates, "templates/reports/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &PDFExporter{
		renderer:  renderer,
		observer:  observer,
		company:   company,
		loc:       loc,
		templates: tpl,
	}, nil
}

// ManifestFileName is the download name of the manifest for day (YYYY-MM-DD).
func ManifestFileName(day string) string {
	return locale.FileSafe("Programacao-Diaria-" + locale.Date(day) + ".pdf")
}

// TransportOrderFileName is the download name of a transport order.
func TransportOrderFileName(d delivery.Delivery) string {
	return locale.FileSafe("Ordem-de-Transporte-" + strconv.FormatInt(d.Key(), 10) + ".pdf")
}

// BuildManifest numbers ds in the given order. Callers pass the selected
// deliveries already sorted by time.
func BuildManifest(day string, ds []delivery.Delivery, loc *time.Location) ManifestPayload {
	rows := make([]ManifestRow, 0, len(ds))
	for i, d := range ds {
		clock := d.RequestedAt.Clock()
		if at, ok := d.RequestedAt.Parse(loc); ok {
			clock = locale.Clock(at)
		}
		rows = append(rows, ManifestRow{
			Number:      i + 1,
			Clock:       clock,
			Destination: d.DestinationLocation,
			Item:        d.ItemName,
			Quantity:    locale.Quantity(float64(d.ItemQuantity)),
			Unit:        string(d.ItemUnit),
			Source:      d.SourceLocation,
			Responsible: d.ResponsibleName,
			Phone:       d.ResponsiblePhone,
		})
	}
	return ManifestPayload{
		Title:       "Programação de Caminhões para Entrega de Materiais",
		Day:         day,
		DayLabel:    locale.Date(day),
		GeneratedAt: time.Now().In(loc),
		Rows:        rows,
	}
}

// BuildTransportOrder maps one delivery onto the transport order layout.
func BuildTransportOrder(company string, d delivery.Delivery, loc *time.Location) TransportOrderPayload {
	requested := string(d.RequestedAt)
	if at, ok := d.RequestedAt.Parse(loc); ok {
		requested = locale.DateTime(at)
	}
	return TransportOrderPayload{
		Company:     company,
		Number:      strconv.FormatInt(d.Key(), 10),
		RequestedAt: requested,
		Source:      d.SourceLocation,
		Destination: d.DestinationLocation,
		Item:        d.ItemName,
		Quantity:    locale.Quantity(float64(d.ItemQuantity)),
		Unit:        string(d.ItemUnit),
		Responsible: orNotInformed(d.ResponsibleName),
		Phone:       orNotInformed(d.ResponsiblePhone),
	}
}

// Manifest renders the landscape manifest for day.
func (p *PDFExporter) Manifest(ctx context.Context, day string, ds []delivery.Delivery) (_ []byte, err error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialized")
	}
	defer p.observe(KindManifest, &err)
	if len(ds) == 0 {
		return nil, ErrEmptyManifest
	}
	html, err := p.execute("reports/manifest.html", BuildManifest(day, ds, p.loc))
	if err != nil {
		return nil, err
	}
	return p.renderer.RenderHTML(ctx, report.Document{
		Name:  ManifestFileName(day),
		HTML:  html,
		Paper: report.A4Landscape,
	})
}

// TransportOrder renders the portrait transport order of one delivery.
func (p *PDFExporter) TransportOrder(ctx context.Context, d delivery.Delivery) (_ []byte, err error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialized")
	}
	defer p.observe(KindTransportOrder, &err)
	if !d.Persisted() {
		return nil, delivery.ErrNotPersisted
	}
	html, err := p.execute("reports/transport_order.html", BuildTransportOrder(p.company, d, p.loc))
	if err != nil {
		return nil, err
	}
	return p.renderer.RenderHTML(ctx, report.Document{
		Name:  TransportOrderFileName(d),
		HTML:  html,
		Paper: report.A4Portrait,
	})
}

func (p *PDFExporter) execute(name string, payload any) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := p.templates.ExecuteTemplate(buf, name, view.TemplateData{Title: name, Data: payload}); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (p *PDFExporter) observe(kind string, errp *error) {
	if p.observer != nil {
		p.observer.ObserveDocument(kind, *errp)
	}
}

func orNotInformed(s string) string {
	if s == "" {
		return "Não informado"
	}
	return s
}
