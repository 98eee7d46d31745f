package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/wikimedia/mediawiki-extensions-UserStatus/pager"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/render"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

func (a *API) listStatuses(w http.ResponseWriter, r *http.Request) {
	type (
		query struct {
			UserID  int64 `json:"user_id" validate:"gte=0"`
			SportID int64 `json:"sport_id" validate:"gte=0"`
			TeamID  int64 `json:"team_id" validate:"gte=0"`
			// Page is bounded by pager.MaxPage.
			Page  int64 `json:"page" validate:"gte=0,lte=1000000"`
			Limit int64 `json:"limit" validate:"gte=0,lte=100"`
		}
		response struct {
			Statuses    []status.View `json:"statuses"`
			Pagination  pager.Nav     `json:"pagination"`
			NetworkName string        `json:"network_name,omitempty"`
		}
	)

	var q query
	for name, dst := range map[string]*int64{
		"user_id":  &q.UserID,
		"sport_id": &q.SportID,
		"team_id":  &q.TeamID,
		"page":     &q.Page,
		"limit":    &q.Limit,
	} {
		n, err := queryInt(r, name)
		if err != nil {
			a.respondError(w, http.StatusBadRequest, err, "Invalid query parameter")
			return
		}
		*dst = n
	}
	if valid := a.validateBody(w, &q); !valid {
		return
	}
	page, limit := int(q.Page), int(q.Limit)
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = a.perPage()
	}

	viewer, err := a.principal(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid identity")
		return
	}

	us, err := a.Statuses.StatusMessages(r.Context(), viewer, q.UserID, q.SportID, q.TeamID, limit, page)
	if err != nil {
		a.handleError(w, err, "Could not list status updates")
		return
	}

	var total int
	if q.UserID > 0 && q.SportID == 0 && q.TeamID == 0 {
		total, err = a.Statuses.UserStatusCount(r.Context(), q.UserID)
	} else {
		total, err = a.Statuses.FeedCount(r.Context(), q.UserID, q.SportID, q.TeamID)
	}
	if err != nil {
		a.handleError(w, err, "Could not count status updates")
		return
	}

	res := response{
		Statuses: status.NewViews(us, viewer),
		Pagination: pager.Page{
			Number:   page,
			PerPage:  limit,
			Total:    total,
			Returned: len(us),
		}.Nav(),
	}
	if q.SportID > 0 || q.TeamID > 0 {
		res.NetworkName = a.networkName(r, q.SportID, q.TeamID)
	}

	a.respond(w, http.StatusOK, res)
}

func (a *API) viewStatus(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status status.View    `json:"status"`
		Voters []status.Voter `json:"voters"`
	}

	id, err := pathID(r, "statusID")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid status id")
		return
	}
	viewer, err := a.principal(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid identity")
		return
	}

	u, err := a.Statuses.StatusMessage(r.Context(), viewer, id)
	if err != nil {
		a.handleError(w, err, "Could not get status update")
		return
	}
	if u == nil {
		a.respondError(w, http.StatusNotFound, fmt.Errorf("status %d not found", id), "Status update not found")
		return
	}

	voters, err := a.Statuses.Voters(r.Context(), id)
	if err != nil {
		a.handleError(w, err, "Could not list voters")
		return
	}
	if voters == nil {
		voters = []status.Voter{}
	}

	a.respond(w, http.StatusOK, response{
		Status: status.NewView(*u, viewer),
		Voters: voters,
	})
}

func (a *API) addStatus(w http.ResponseWriter, r *http.Request, p status.Principal) {
	type (
		request struct {
			SportID int64  `json:"sport_id" validate:"gte=0"`
			TeamID  int64  `json:"team_id" validate:"gte=0"`
			Text    string `json:"text" validate:"required,max=1000"`
		}
		response struct {
			ID     int64  `json:"id"`
			Result string `json:"result"`
		}
	)

	var body request
	if ok := a.decodeBody(w, r, &body); !ok {
		return
	}
	if a.throttled(w, p) {
		return
	}

	u, err := a.Statuses.AddStatus(r.Context(), p, body.SportID, body.TeamID, body.Text)
	if err != nil {
		a.handleError(w, err, "Could not add status update")
		return
	}

	var network string
	if !u.Personal() {
		network = a.networkName(r, u.SportID, u.TeamID)
	}
	html, err := a.Render.Added(u, network)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not render status update")
		return
	}

	a.respond(w, http.StatusCreated, response{
		ID:     u.ID,
		Result: html,
	})
}

func (a *API) addNetworkStatus(w http.ResponseWriter, r *http.Request, p status.Principal) {
	type request struct {
		SportID int64  `json:"sport_id" validate:"required_without=TeamID,gte=0"`
		TeamID  int64  `json:"team_id" validate:"gte=0"`
		Text    string `json:"text" validate:"required,max=1000"`
		Count   int    `json:"count" validate:"gte=0,lte=100"`
	}

	var body request
	if ok := a.decodeBody(w, r, &body); !ok {
		return
	}
	if a.throttled(w, p) {
		return
	}

	if _, err := a.Statuses.AddStatus(r.Context(), p, body.SportID, body.TeamID, body.Text); err != nil {
		a.handleError(w, err, "Could not add status update")
		return
	}

	count := body.Count
	if count == 0 {
		count = a.perPage()
	}
	us, err := a.Statuses.StatusMessages(r.Context(), p, 0, body.SportID, body.TeamID, count, 1)
	if err != nil {
		a.handleError(w, err, "Could not list status updates")
		return
	}

	html, err := a.Render.WithName(p.Actor, p.Name).Feed(status.NewViews(us, p))
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not render status updates")
		return
	}
	a.respondResult(w, http.StatusCreated, html)
}

func (a *API) voteStatus(w http.ResponseWriter, r *http.Request, p status.Principal) {
	type request struct {
		Vote int `json:"vote" validate:"required,oneof=-1 1"`
	}

	id, err := pathID(r, "statusID")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid status id")
		return
	}
	var body request
	if ok := a.decodeBody(w, r, &body); !ok {
		return
	}

	v, err := a.Statuses.AddStatusVote(r.Context(), p, id, body.Vote)
	if err != nil {
		a.handleError(w, err, "Could not add vote")
		return
	}
	if v == nil {
		a.Logger.Info("Vote rejected", "status_id", id, "actor", p.Actor)
	}

	tally, err := a.Statuses.VoteTally(r.Context(), id)
	if err != nil {
		a.handleError(w, err, "Could not get votes")
		return
	}
	plus := 0
	if tally != nil {
		plus = tally.Plus
	}
	a.respondResult(w, http.StatusOK, render.NumAgree(plus))
}

func (a *API) deleteStatus(w http.ResponseWriter, r *http.Request, p status.Principal) {
	id, err := pathID(r, "statusID")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid status id")
		return
	}

	if err := a.Statuses.DeleteStatus(r.Context(), p, id); err != nil {
		a.handleError(w, err, "Could not delete status update")
		return
	}
	a.respondResult(w, http.StatusOK, "ok")
}

// networkName looks up the display name of a network. Lookup failures are
// logged and yield an empty name.
func (a *API) networkName(r *http.Request, sportID, teamID int64) string {
	name, err := a.Statuses.NetworkName(r.Context(), sportID, teamID)
	if err != nil {
		a.Logger.Warn("Could not get network name", "sport_id", sportID, "team_id", teamID, "error", err.Error())
		return ""
	}
	return name
}

// queryInt parses the integer query parameter name. A missing parameter
// is zero.
func queryInt(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return n, nil
}
