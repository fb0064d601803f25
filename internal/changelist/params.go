// Package changelist turns raw changelist requests into fully resolved query
// filters: it applies the mandatory site-visibility boundary first, then the
// user-selected filters with their documented defaults.
package changelist

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/nordiccms/content-expiry/internal/models"
)

// Query parameter names of the changelist and export endpoints.
const (
	paramContentType      = "content_type"
	paramCreatedBy        = "created_by"
	paramState            = "state"
	paramExpiresGTE       = "expires__range__gte"
	paramExpiresLTE       = "expires__range__lte"
	paramComplianceNumber = "compliance_number"
	paramSite             = "site"
	paramLimit            = "limit"
	paramOffset           = "offset"
)

// Params is a parsed changelist request. Zero values mean "not supplied";
// defaults are applied by the Scoper, not here.
type Params struct {
	SiteID           int64
	ContentTypes     []string
	CreatedBy        string
	States           []string
	AllStates        bool
	ExpiresGTE       *time.Time
	ExpiresLTE       *time.Time
	ComplianceNumber string
	Limit            int
	Offset           int
}

// dateLayouts are accepted for the expires range bounds, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseParams reads the changelist query string. Unknown state tokens and
// malformed numbers are reported; an absent site falls back to defaultSiteID.
func ParseParams(query url.Values, defaultSiteID int64) (Params, error) {
	p := Params{SiteID: defaultSiteID}

	if site := query.Get(paramSite); site != "" {
		id, err := strconv.ParseInt(site, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid site id %q", site)
		}
		p.SiteID = id
	}

	p.ContentTypes = append(p.ContentTypes, query[paramContentType]...)
	p.CreatedBy = query.Get(paramCreatedBy)
	p.ComplianceNumber = query.Get(paramComplianceNumber)

	for _, state := range query[paramState] {
		if state == models.StateAll {
			p.AllStates = true
			continue
		}
		if !models.IsValidState(state) {
			return p, fmt.Errorf("invalid state %q", state)
		}
		p.States = append(p.States, state)
	}

	var err error
	if p.ExpiresGTE, err = parseDateParam(query, paramExpiresGTE); err != nil {
		return p, err
	}
	if p.ExpiresLTE, err = parseDateParam(query, paramExpiresLTE); err != nil {
		return p, err
	}

	if p.Limit, err = parseIntParam(query, paramLimit); err != nil {
		return p, err
	}
	if p.Offset, err = parseIntParam(query, paramOffset); err != nil {
		return p, err
	}

	return p, nil
}

func parseDateParam(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q for %s", raw, name)
}

func parseIntParam(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}
