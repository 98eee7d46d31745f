package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/api/validator"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/render"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

// Statuses provides the status update operations. It is implemented by
// *status.Service.
type Statuses interface {
	AddStatus(ctx context.Context, p status.Principal, sportID, teamID int64, text string) (status.StatusUpdate, error)
	DeleteStatus(ctx context.Context, p status.Principal, id int64) error
	StatusMessage(ctx context.Context, viewer status.Principal, id int64) (*status.StatusUpdate, error)
	StatusMessages(ctx context.Context, viewer status.Principal, author, sportID, teamID int64, limit, page int) ([]status.StatusUpdate, error)
	FeedCount(ctx context.Context, author, sportID, teamID int64) (int, error)
	UserStatusCount(ctx context.Context, actor int64) (int, error)
	NetworkName(ctx context.Context, sportID, teamID int64) (string, error)
	AddStatusVote(ctx context.Context, p status.Principal, statusID int64, score int) (*status.Vote, error)
	VoteTally(ctx context.Context, statusID int64) (*status.Tally, error)
	Voters(ctx context.Context, statusID int64) ([]status.Voter, error)
}

var _ Statuses = (*status.Service)(nil)

// A RequestRecorder records served requests, typically as metrics.
type RequestRecorder interface {
	RecordRequest(route string, statusCode int, d time.Duration)
}

// API provides the REST endpoints for the application.
type API struct {
	Logger   *slog.Logger
	Statuses Statuses
	Auth     Authenticator
	Render   *render.Renderer
	Val      *validator.Validator
	Metrics  RequestRecorder
	Throttle *Throttle
	CSRF     CSRFConfig

	// PerPage is the feed page size used when the client sends no limit.
	PerPage int

	once sync.Once
	mux  *http.ServeMux
}

// defaultPerPage defines the default number of items displayed on a single page in pagination.
const defaultPerPage = 25

const headerRequestID = "X-Request-Id"

func (a *API) setupRoutes() {
	if a.Render == nil {
		a.Render = render.New()
	}
	if a.Val == nil {
		a.Val = validator.New()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /statuses", a.listStatuses)
	mux.HandleFunc("GET /statuses/{statusID}", a.viewStatus)
	mux.HandleFunc("POST /statuses", a.mutation(a.addStatus))
	mux.HandleFunc("POST /statuses/network", a.mutation(a.addNetworkStatus))
	mux.HandleFunc("POST /statuses/{statusID}/votes", a.mutation(a.voteStatus))
	mux.HandleFunc("DELETE /statuses/{statusID}", a.mutation(a.deleteStatus))
	mux.HandleFunc("GET /csrf-token", a.csrfToken)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)

	start := time.Now()
	id := r.Header.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(headerRequestID, id)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path, "request_id", id)

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	a.mux.ServeHTTP(sw, r)

	if a.Metrics != nil {
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		a.Metrics.RecordRequest(route, sw.status, time.Since(start))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	if status >= http.StatusInternalServerError {
		a.Logger.Error("Error", "error", err.Error())
	} else {
		a.Logger.Info("Request rejected", "status", status, "error", err.Error())
	}
	a.respond(w, status, response{Error: msg})
}

// respondResult writes the {"result": ...} envelope of the status actions.
func (a *API) respondResult(w http.ResponseWriter, status int, result string) {
	type response struct {
		Result string `json:"result"`
	}
	a.respond(w, status, response{Result: result})
}

// handleError maps service errors to responses. msg is used for
// unexpected errors.
func (a *API) handleError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, status.ErrReadOnly):
		a.Logger.Info("Write skipped in read-only mode")
		a.respondResult(w, http.StatusOK, "")
	case errors.Is(err, status.ErrValidation):
		a.respondError(w, http.StatusBadRequest, err, err.Error())
	case errors.Is(err, status.ErrForbidden):
		a.respondError(w, http.StatusForbidden, err, "Not permitted")
	default:
		a.respondError(w, http.StatusInternalServerError, err, msg)
	}
}

func (a *API) validateBody(w http.ResponseWriter, s any) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

// decodeBody decodes a JSON request body into v and validates it.
func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return false
	}
	if err := r.Body.Close(); err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return false
	}
	return a.validateBody(w, v)
}

// principal resolves the principal of r. Without an Authenticator every
// request is anonymous.
func (a *API) principal(r *http.Request) (status.Principal, error) {
	if a.Auth == nil {
		return status.Principal{}, nil
	}
	return a.Auth.Principal(r)
}

type principalHandler func(w http.ResponseWriter, r *http.Request, p status.Principal)

// mutation guards a state-changing handler: the request must carry a valid
// anti-forgery token and come from a registered user.
func (a *API) mutation(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checkCSRF(r); err != nil {
			a.respondError(w, http.StatusForbidden, err, "CSRF token validation failed")
			return
		}
		p, err := a.principal(r)
		if err != nil {
			a.respondError(w, http.StatusBadRequest, err, "Invalid identity")
			return
		}
		if !p.Registered() {
			a.respondError(w, http.StatusUnauthorized, errors.New("anonymous mutation"), "Login required")
			return
		}
		next(w, r, p)
	}
}

// throttled reports whether p exceeded the posting rate and writes the
// response if so.
func (a *API) throttled(w http.ResponseWriter, p status.Principal) bool {
	if a.Throttle == nil || a.Throttle.Allow(p.Actor) {
		return false
	}
	w.Header().Set("Retry-After", strconv.Itoa(a.Throttle.RetryAfter()))
	a.respondError(w, http.StatusTooManyRequests, errors.New("posting rate exceeded"), "Too many status updates")
	return true
}

func (a *API) perPage() int {
	if a.PerPage > 0 {
		return a.PerPage
	}
	return defaultPerPage
}

// pathID parses the int64 path value name.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
