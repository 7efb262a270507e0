package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"cap-dashboard/internal/errors"
	"cap-dashboard/internal/models"
	"github.com/starfederation/datastar-go/datastar"
)

// datastarQueryKey carries the signal store on Datastar GET requests.
const datastarQueryKey = "datastar"

// FilterSignals is the filter part of the page's Datastar signal store.
// Nil selections mean the signal was not sent, which selects everything.
type FilterSignals struct {
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Categories *[]string `json:"categories"`
	Payments   *[]string `json:"payments"`
	Frequent   string    `json:"frequent"`
}

// CriteriaFromQuery reads start, end, category, payment and frequent.
// A missing category or payment key selects every option; a key present
// without values selects nothing.
func CriteriaFromQuery(q url.Values, opts models.Options) (models.FilterCriteria, error) {
	start, err := parseDay("start", q.Get("start"))
	if err != nil {
		return models.FilterCriteria{}, err
	}
	end, err := parseDay("end", q.Get("end"))
	if err != nil {
		return models.FilterCriteria{}, err
	}

	return models.FilterCriteria{
		Start:          start,
		End:            end,
		Categories:     selection(q["category"], q.Has("category"), opts.Categories),
		PaymentMethods: selection(q["payment"], q.Has("payment"), opts.PaymentMethods),
		Frequent:       models.FrequentFilter(q.Get("frequent")),
	}, nil
}

func CriteriaFromSignals(s FilterSignals, opts models.Options) (models.FilterCriteria, error) {
	start, err := parseDay("start", s.Start)
	if err != nil {
		return models.FilterCriteria{}, err
	}
	end, err := parseDay("end", s.End)
	if err != nil {
		return models.FilterCriteria{}, err
	}

	criteria := models.FilterCriteria{
		Start:    start,
		End:      end,
		Frequent: models.FrequentFilter(s.Frequent),
	}
	if s.Categories == nil {
		criteria.Categories = selection(nil, false, opts.Categories)
	} else {
		criteria.Categories = selection(*s.Categories, true, opts.Categories)
	}
	if s.Payments == nil {
		criteria.PaymentMethods = selection(nil, false, opts.PaymentMethods)
	} else {
		criteria.PaymentMethods = selection(*s.Payments, true, opts.PaymentMethods)
	}
	return criteria, nil
}

// criteriaFromRequest prefers Datastar signals and falls back to plain
// query parameters when the request carries none.
func criteriaFromRequest(r *http.Request, opts models.Options) (models.FilterCriteria, error) {
	if r.URL.Query().Has(datastarQueryKey) {
		var signals FilterSignals
		if err := datastar.ReadSignals(r, &signals); err != nil {
			return models.FilterCriteria{}, errors.BadRequestWrap(err, "Invalid signals")
		}
		return CriteriaFromSignals(signals, opts)
	}
	return CriteriaFromQuery(r.URL.Query(), opts)
}

func parseDay(field, value string) (models.Day, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Day{}, nil
	}
	d, err := models.ParseDay(value)
	if err != nil {
		return models.Day{}, errors.BadRequest("Invalid date").WithDetails("%s: %v", field, err)
	}
	return d, nil
}

// selection flattens repeated and comma separated values, dropping blanks.
func selection(values []string, present bool, all []string) []string {
	if !present {
		return append([]string{}, all...)
	}
	out := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
