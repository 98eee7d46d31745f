package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

// Identity headers set by the fronting platform.
const (
	HeaderActorID      = "X-Actor-Id"
	HeaderActorName    = "X-Actor-Name"
	HeaderActorRights  = "X-Actor-Rights"
	HeaderActorBlocked = "X-Actor-Blocked"
)

// An Authenticator resolves the principal a request is made on behalf of.
type Authenticator interface {
	Principal(r *http.Request) (status.Principal, error)
}

// HeaderAuthenticator trusts the identity headers of the request. It must
// only be used behind a proxy that strips these headers from client requests.
type HeaderAuthenticator struct{}

// Principal returns the principal described by the identity headers. A
// missing or zero actor id is the anonymous principal.
func (HeaderAuthenticator) Principal(r *http.Request) (status.Principal, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderActorID))
	if raw == "" {
		return status.Principal{}, nil
	}
	actor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || actor < 0 {
		return status.Principal{}, fmt.Errorf("invalid %s %q", HeaderActorID, raw)
	}
	if actor == 0 {
		return status.Principal{}, nil
	}

	p := status.Principal{
		Actor: actor,
		Name:  r.Header.Get(HeaderActorName),
	}
	for _, right := range strings.Split(r.Header.Get(HeaderActorRights), ",") {
		if right = strings.TrimSpace(right); right != "" {
			p.Rights = append(p.Rights, right)
		}
	}
	if v := r.Header.Get(HeaderActorBlocked); v != "" {
		blocked, err := strconv.ParseBool(v)
		if err != nil {
			return status.Principal{}, fmt.Errorf("invalid %s %q", HeaderActorBlocked, v)
		}
		p.Blocked = blocked
	}
	return p, nil
}
