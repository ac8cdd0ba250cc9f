// Package classifier maps a registry page to a result category.
package classifier

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/service"
)

// Markers are the page signals the classifier looks for
type Markers struct {
	// QueryParam is present in the final URL when the registry redirected
	// the lookup to its search form, which it does for free names.
	QueryParam  string
	Taken       string
	Available   string
	Unavailable string
	// AuctionText is matched, case-insensitively, against the text of the
	// element carrying the Available marker.
	AuctionText string
}

// DefaultMarkers returns the markers used by fragment.com
func DefaultMarkers() Markers {
	return Markers{
		QueryParam:  "query",
		Taken:       "tm-status-taken",
		Available:   "tm-status-avail",
		Unavailable: "tm-status-unavail",
		AuctionText: "auction",
	}
}

// Classifier implements service.Classifier
type Classifier struct {
	markers Markers
}

var _ service.Classifier = (*Classifier)(nil)

// New creates a classifier
func New(markers Markers) *Classifier {
	return &Classifier{markers: markers}
}

// Classify checks, in order: redirect to the search form, taken marker,
// available marker, unavailable marker. A page matching none of them is
// reported as taken so that ambiguity never produces a false "available".
func (c *Classifier) Classify(raw *service.RawResponse) entity.CheckResult {
	if raw == nil {
		return entity.Taken()
	}

	if c.redirectedToQuery(raw.FinalURL) {
		return entity.Available()
	}

	body := raw.Body
	switch {
	case contains(body, c.markers.Taken):
		return entity.Taken()
	case contains(body, c.markers.Available):
		if c.onAuction(body) {
			return entity.OnAuction()
		}
		return entity.Available()
	case contains(body, c.markers.Unavailable):
		return entity.Unavailable()
	default:
		return entity.Taken()
	}
}

func (c *Classifier) redirectedToQuery(finalURL string) bool {
	param := c.markers.QueryParam
	if finalURL == "" || param == "" {
		return false
	}
	if u, err := url.Parse(finalURL); err == nil {
		if _, ok := u.Query()[param]; ok {
			return true
		}
	}
	return strings.Contains(finalURL, param+"=")
}

// onAuction inspects the elements tagged with the Available marker class
func (c *Classifier) onAuction(body string) bool {
	if c.markers.AuctionText == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return false
	}

	needle := strings.ToLower(c.markers.AuctionText)
	found := false
	doc.Find("." + c.markers.Available).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), needle) {
			found = true
			return false
		}
		return true
	})
	return found
}

func contains(body, marker string) bool {
	return marker != "" && strings.Contains(body, marker)
}
