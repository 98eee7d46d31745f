// Package render turns status updates into the HTML fragments served by the
// action surface.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

// Row classes of a feed fragment.
const (
	ClassTop    = "user-status-row-top"
	ClassRow    = "user-status-row"
	ClassBottom = "user-status-row-bottom"
)

// NoThoughts is rendered in place of an empty feed.
const NoThoughts = "No new thoughts."

// A Renderer renders status views. It is safe for concurrent use.
type Renderer struct {
	// Names resolves the display name of an actor. Nil renders "#<actor>".
	Names func(actor int64) string
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time

	policy *bluemonday.Policy
}

// New returns a Renderer with the message allow-list installed.
func New() *Renderer {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "strong", "em", "br", "code")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)

	return &Renderer{policy: p}
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// WithName returns a copy of r that renders actor as name. Other actors are
// resolved by r.Names.
func (r *Renderer) WithName(actor int64, name string) *Renderer {
	if name == "" {
		return r
	}
	names := r.Names
	c := *r
	c.Names = func(a int64) string {
		if a == actor {
			return name
		}
		if names != nil {
			return names(a)
		}
		return ""
	}
	return &c
}

func (r *Renderer) name(actor int64) string {
	if r.Names != nil {
		if n := r.Names(actor); n != "" {
			return n
		}
	}
	return fmt.Sprintf("#%d", actor)
}

var (
	anchorRe  = regexp.MustCompile(`(?is)(<a\b[^>]*>)(.*?)(</a>)`)
	bareURLRe = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s<]+`)
	linkURLRe = regexp.MustCompile(`(?i)^(?:http|https|ftp)://`)
	imageRe   = regexp.MustCompile(`(?i)<img src=`)
)

// Message sanitizes the text of a status update, links bare URLs and cuts
// over-long link texts.
func (r *Renderer) Message(text string) template.HTML {
	s := r.policy.Sanitize(strings.TrimSpace(text))
	s = linkify(s)
	return template.HTML(CutLinkTexts(s))
}

// linkify wraps bare URLs outside of existing anchors in links.
func linkify(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range anchorRe.FindAllStringIndex(s, -1) {
		b.WriteString(linkifyText(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(linkifyText(s[last:]))
	return b.String()
}

func linkifyText(s string) string {
	return bareURLRe.ReplaceAllStringFunc(s, func(u string) string {
		trimmed := strings.TrimRight(u, ".,;:!?)")
		rest := u[len(trimmed):]
		return `<a href="` + trimmed + `" rel="nofollow">` + trimmed + `</a>` + rest
	})
}

// CutLinkTexts shortens the text of every link in s whose text is a URL
// longer than 50 characters.
func CutLinkTexts(s string) string {
	return anchorRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := anchorRe.FindStringSubmatch(m)
		return parts[1] + CutLinkText(parts[2]) + parts[3]
	})
}

// CutLinkText keeps the first and last 22 characters of a URL link text
// longer than 50 characters. Other texts are returned unchanged.
func CutLinkText(text string) string {
	const limit, keep = 50, 50/2 - 3

	if !linkURLRe.MatchString(text) || imageRe.MatchString(text) {
		return text
	}
	rs := []rune(text)
	if len(rs) <= limit {
		return text
	}
	start := strings.TrimSpace(string(rs[:keep]))
	end := strings.TrimSpace(string(rs[len(rs)-keep:]))
	return start + "..." + end
}

// TimeAgo describes the time elapsed between then and now, e.g.
// "1 day 3 hours 5 minutes". Hours and minutes are only shown for updates
// younger than two days and seconds only when nothing else is shown.
func TimeAgo(then, now time.Time) string {
	diff := int64(now.Sub(then) / time.Second)
	if diff < 0 {
		diff = 0
	}
	days := diff / 86400
	rest := diff - days*86400
	hours := rest / 3600
	minutes := (rest - hours*3600) / 60
	seconds := rest - hours*3600 - minutes*60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day", "days"))
	}
	if days < 2 {
		if hours > 0 {
			parts = append(parts, plural(hours, "hour", "hours"))
		}
		if minutes > 0 {
			parts = append(parts, plural(minutes, "minute", "minutes"))
		}
		if len(parts) == 0 && seconds > 0 {
			parts = append(parts, plural(seconds, "second", "seconds"))
		}
	}
	if len(parts) == 0 {
		return plural(1, "second", "seconds")
	}
	return strings.Join(parts, " ")
}

// NumAgree returns the vote result message for n upvotes.
func NumAgree(n int) string {
	if n == 1 {
		return "1 person agrees"
	}
	return fmt.Sprintf("%d people agree", n)
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

type row struct {
	status.View
	Class    string
	UserName string
	Message  template.HTML
	Ago      string
	Agree    string
}

var tmpl = template.Must(template.New("render").Parse(`
{{- define "added" -}}
{{- with .Network}}<div class="user-status-network">{{.}}</div>
{{end -}}
<div class="status-message">{{.Message}}</div>
<div class="user-status-profile-vote"><div class="user-status-date">just added</div></div>
{{- end -}}

{{- define "row" -}}
<div class="{{.Class}}" id="user-status-row-{{.ID}}">
<div class="user-status-message">
<a href="/statuses?user_id={{.Actor}}"><b>{{.UserName}}</b></a> {{.Message}}
<div class="user-status-date">{{.Ago}} ago</div>
<div class="user-status-links">
{{- if .CanVote}}
<a class="vote-status-link" href="/statuses/{{.ID}}/votes" data-message-id="{{.ID}}">[agree]</a>
{{- else if .Voted}}
<span class="user-status-num-agree">{{.Agree}}</span>
{{- end}}
<a href="/statuses/{{.ID}}">[see who agrees]</a>
{{- if .CanDelete}}
<span class="user-status-delete-link"><a href="/statuses/{{.ID}}" data-message-id="{{.ID}}">delete</a></span>
{{- end}}
</div>
</div>
</div>
{{end -}}

{{- define "feed" -}}
{{- range .}}{{template "row" .}}{{else}}<p>` + NoThoughts + `</p>{{end -}}
{{- end -}}
`))

// Added renders the confirmation fragment shown to the author of a new
// status update. network names the network it was posted to, if any.
func (r *Renderer) Added(u status.StatusUpdate, network string) (string, error) {
	data := struct {
		Network string
		Message template.HTML
	}{
		Network: network,
		Message: r.Message(u.Text),
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "added", data); err != nil {
		return "", fmt.Errorf("render added: %w", err)
	}
	return buf.String(), nil
}

// Feed renders a feed fragment, one row per view.
func (r *Renderer) Feed(views []status.View) (string, error) {
	now := r.now()
	rows := make([]row, len(views))
	for i, v := range views {
		rows[i] = row{
			View:     v,
			Class:    rowClass(i, len(views)),
			UserName: r.name(v.Actor),
			Message:  r.Message(v.Text),
			Ago:      TimeAgo(v.CreatedAt, now),
			Agree:    NumAgree(v.Plus),
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "feed", rows); err != nil {
		return "", fmt.Errorf("render feed: %w", err)
	}
	return buf.String(), nil
}

func rowClass(i, n int) string {
	switch {
	case i == 0:
		return ClassTop
	case i < n-1:
		return ClassRow
	default:
		return ClassBottom
	}
}
