package handler // HTTP handlers; each binds a request, calls one service and renders JSON

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/service"
)

// requestTimeout bounds the store work done for one request.
const requestTimeout = 5 * time.Second

var validate = validator.New(validator.WithRequiredStructEnabled())

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes a JSON body into dst and runs its validate tags. The
// returned error text is safe to show to clients.
func bind(c echo.Context, dst any) error {
	return decodeBody(c, dst, false)
}

// bindOptional is bind for endpoints whose body may be absent. An empty
// body, chunked or not, leaves dst at its zero value.
func bindOptional(c echo.Context, dst any) error {
	return decodeBody(c, dst, true)
}

// decodeBody reads JSON itself instead of using c.Bind: echo's binder
// ignores unknown fields and also fills dst from path and query params.
func decodeBody(c echo.Context, dst any, optional bool) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !(optional && errors.Is(err, io.EOF)) {
		return errors.New("invalid body")
	}
	if err := validate.Struct(dst); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

// validationMessage turns validator output into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field()[:1])+fe.Field()[1:]+": "+fe.Tag())
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

// respondError renders a service error with the status its kind maps to.
// Internal causes are logged and replaced by a generic message.
func respondError(c echo.Context, log zerolog.Logger, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Msg: "internal error", Err: err}
	}

	status := http.StatusInternalServerError
	switch se.Kind {
	case service.KindValidation, service.KindLimitExceeded, service.KindInvariant,
		service.KindDuplicate, service.KindPaymentFailed:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindUnauthorized:
		status = http.StatusUnauthorized
	case service.KindForbidden:
		status = http.StatusForbidden
	}

	if status >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	body := echo.Map{"error": se.Msg}
	if se.Kind == service.KindInternal {
		body["error"] = "Internal server error"
	}
	if se.PaymentID != "" {
		body["paymentId"] = se.PaymentID
		body["message"] = "Your payment could not be processed. Please try again."
	}
	return c.JSON(status, body)
}

func actor(c echo.Context) service.Actor {
	return service.Actor{ID: middleware.UserID(c), Role: middleware.Role(c)}
}

// targetUser resolves an optional userId parameter against the caller.
// Only admins may name another user.
func targetUser(c echo.Context, requested string) (string, bool) {
	a := actor(c)
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == a.ID {
		return a.ID, true
	}
	return requested, a.IsAdmin()
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}
