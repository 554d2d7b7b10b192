package deliveryhttp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/schedule"
)

// Form is the delivery form as posted by the browser.
type Form struct {
	ID               int64
	Date             string `validate:"required,datetime=2006-01-02"`
	Time             string `validate:"required,datetime=15:04"`
	Source           string `validate:"required,max=200"`
	Destination      string `validate:"required,max=200"`
	Item             string `validate:"required,max=200"`
	Quantity         string `validate:"required,quantity"`
	Unit             string `validate:"required,unit"`
	ResponsibleName  string `validate:"omitempty,max=200"`
	ResponsiblePhone string `validate:"omitempty,max=30"`
	Status           string
}

type formErrors map[string]string

var fieldMessages = map[string]string{
	"Date":             "Informe a data da entrega.",
	"Time":             "Informe a hora da entrega.",
	"Source":           "Informe a origem.",
	"Destination":      "Informe o destino.",
	"Item":             "Informe o item.",
	"Quantity":         "Informe uma quantidade maior que zero.",
	"Unit":             "Selecione uma unidade de medida válida.",
	"ResponsibleName":  "Nome muito longo.",
	"ResponsiblePhone": "Telefone muito longo.",
}

func newFormValidator() *validator.Validate {
	v := delivery.NewValidator()
	_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		q, ok := parseQuantity(fl.Field().String())
		return ok && q > 0
	})
	return v
}

// NewForm returns a blank form for day with the default quantity and unit.
func NewForm(day string) Form {
	return Form{
		Date:     day,
		Quantity: "1",
		Unit:     string(delivery.DefaultUnit),
	}
}

// FormFromDelivery fills the form to edit d.
func FormFromDelivery(d delivery.Delivery) Form {
	return Form{
		ID:               d.Key(),
		Date:             d.RequestedAt.Day(),
		Time:             d.RequestedAt.Clock(),
		Source:           d.SourceLocation,
		Destination:      d.DestinationLocation,
		Item:             d.ItemName,
		Quantity:         strconv.FormatFloat(float64(d.ItemQuantity), 'f', -1, 64),
		Unit:             string(d.ItemUnit),
		ResponsibleName:  d.ResponsibleName,
		ResponsiblePhone: schedule.FormatPhone(d.ResponsiblePhone),
		Status:           d.Status,
	}
}

// FormFromRequest reads the posted fields. The phone is normalised the
// same way the browser does while typing.
func FormFromRequest(r *http.Request) (Form, error) {
	if err := r.ParseForm(); err != nil {
		return Form{}, err
	}
	get := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	return Form{
		Date:             get("date"),
		Time:             get("time"),
		Source:           get("local_armazenagem"),
		Destination:      get("local_obra"),
		Item:             get("item_nome"),
		Quantity:         get("item_quantidade"),
		Unit:             get("item_unidade_medida"),
		ResponsibleName:  get("responsavel_nome"),
		ResponsiblePhone: schedule.FormatPhone(get("responsavel_telefone")),
		Status:           get("status"),
	}, nil
}

// Validate returns one message per invalid field.
func (f Form) Validate(v *validator.Validate) formErrors {
	errs := formErrors{}
	if err := v.Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs["_"] = err.Error()
			return errs
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			msg, ok := fieldMessages[fe.Field()]
			if !ok {
				msg = "Valor inválido."
			}
			errs[fe.Field()] = msg
		}
	}
	return errs
}

// Delivery converts a validated form.
func (f Form) Delivery() delivery.Delivery {
	q, _ := parseQuantity(f.Quantity)
	d := delivery.Delivery{
		RequestedAt:         delivery.NewTimestamp(f.Date, f.Time),
		SourceLocation:      f.Source,
		DestinationLocation: f.Destination,
		ItemName:            f.Item,
		ItemQuantity:        delivery.Quantity(q),
		ItemUnit:            delivery.Unit(f.Unit),
		ResponsibleName:     f.ResponsibleName,
		ResponsiblePhone:    f.ResponsiblePhone,
		Status:              f.Status,
	}
	if f.ID > 0 {
		d = d.WithID(f.ID)
	}
	return d
}

// Editing reports whether the form updates an existing delivery.
func (f Form) Editing() bool {
	return f.ID > 0
}

func parseQuantity(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
