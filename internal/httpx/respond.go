package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/inventory"
	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
	"github.com/ariefcatur/go-retail-backoffice/internal/redisx"
	"github.com/ariefcatur/go-retail-backoffice/internal/reports"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const maxBody = 1 << 20

var errBadJSON = errors.New("invalid json")

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// laporkan nama field JSON, bukan nama field Go
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decoder reads and validates request bodies and turns errors into responses.
type decoder struct {
	validate *validator.Validate
	log      logrus.FieldLogger
}

func (d *decoder) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		d.fail(w, r, fmt.Errorf("%w: %v", errBadJSON, err))
		return false
	}
	if err := d.validate.Struct(dst); err != nil {
		d.fail(w, r, err)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadJSON),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrUnknownStatus),
		errors.Is(err, promotions.ErrInvalidPromotion),
		errors.Is(err, inventory.ErrInvalidImport),
		errors.Is(err, reports.ErrInvalidRange),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, auth.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate),
		errors.Is(err, database.ErrInUse),
		errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, redisx.ErrInFlight):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error. Storage and other unexpected errors get
// a generic body; the detail goes to the log only.
func (d *decoder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		return
	}

	code := statusFor(err)
	if code == http.StatusInternalServerError {
		d.log.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error("request failed")
		writeJSON(w, code, errorBody{Error: "internal server error"})
		return
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

// fieldPath drops the top-level struct name: "CreateInput.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
