package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"gym/internal/application/orchestrators"
	"gym/internal/domain/identity"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorResponse is the body of every non-2xx JSON answer.
type errorResponse struct {
	Error string `json:"error"`
}

// identityView is the JSON shape of an identity.
type identityView struct {
	MemberID           int64           `json:"member_id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Roles              []identity.Role `json:"roles"`
	TrainerID          *int64          `json:"trainer_id,omitempty"`
	MustChangePassword bool            `json:"must_change_password"`
	Impersonating      bool            `json:"impersonating"`
	ImpersonatorID     string          `json:"impersonator_id,omitempty"`
}

func viewOf(id identity.Identity) identityView {
	v := identityView{
		MemberID:           id.MemberID,
		Name:               id.Name,
		Email:              id.Email,
		Roles:              id.Roles,
		TrainerID:          id.TrainerID,
		MustChangePassword: id.MustChangePassword,
	}
	if id.Impersonation != nil {
		v.Impersonating = true
		v.ImpersonatorID = id.Impersonation.OriginalAdminID
	}
	return v
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// internalError logs the error and returns a generic 500 response.
// OWASP A05: never expose internal error details to clients.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "error", err.Error(), "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeInput reads a JSON or form body into v and validates it.
func decodeInput(r *http.Request, v any) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err = strictDecode(r, v)
	} else {
		err = render.DecodeForm(r.Body, v)
	}
	if err != nil {
		return errBadBody
	}
	return validate.Struct(v)
}

var errBadBody = errors.New("malformed request body")

// inputError turns a decode or validation failure into a 400 response.
func inputError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		writeError(w, r, http.StatusBadRequest, "invalid "+strings.ToLower(verrs[0].Field()))
		return
	}
	writeError(w, r, http.StatusBadRequest, err.Error())
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func requestMeta(r *http.Request) orchestrators.RequestMeta {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return orchestrators.RequestMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}
