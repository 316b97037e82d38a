package httpapi

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/picloop/identity/internal/common"
)

// requestsTotal counts identity operations by outcome kind.
var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "identity_requests_total",
	Help: "Total number of identity operations by operation and outcome",
}, []string{"operation", "outcome"})

// recordOutcome classifies an operation result for the counter. A nil
// error is a success; known error kinds keep their name, anything else
// is counted as internal.
func recordOutcome(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorValidation):
		outcome = "validation"
	case errors.Is(err, common.ErrorAlreadyExists):
		outcome = "conflict"
	case errors.Is(err, common.ErrorNotFound):
		outcome = "not_found"
	case errors.Is(err, common.ErrorUnauthorized):
		outcome = "unauthorized"
	case errors.Is(err, common.ErrorStorage):
		outcome = "storage"
	case errors.Is(err, common.ErrorHashing):
		outcome = "hashing"
	default:
		outcome = "internal"
	}
	requestsTotal.WithLabelValues(operation, outcome).Inc()
}
