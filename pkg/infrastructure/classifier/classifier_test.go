package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/service"
)

const pageURL = "https://fragment.com/username/alice"

func page(status, text string) string {
	return `<html><body><div class="tm-section-header">` +
		`<span class="tm-section-header-status ` + status + `">` + text + `</span>` +
		`</div></body></html>`
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  service.RawResponse
		want entity.Status
	}{
		{
			name: "redirect to query form",
			raw:  service.RawResponse{FinalURL: "https://fragment.com/?query=alice", StatusCode: 200},
			want: entity.StatusAvailable,
		},
		{
			name: "redirect wins over taken marker",
			raw: service.RawResponse{
				FinalURL:   "https://fragment.com/?query=alice",
				StatusCode: 200,
				Body:       page("tm-status-taken", "Taken"),
			},
			want: entity.StatusAvailable,
		},
		{
			name: "taken marker",
			raw:  service.RawResponse{FinalURL: pageURL, Body: page("tm-status-taken", "Taken")},
			want: entity.StatusTaken,
		},
		{
			name: "taken wins over available marker",
			raw: service.RawResponse{
				FinalURL: pageURL,
				Body:     page("tm-status-taken", "Taken") + page("tm-status-avail", "Available"),
			},
			want: entity.StatusTaken,
		},
		{
			name: "available marker",
			raw:  service.RawResponse{FinalURL: pageURL, Body: page("tm-status-avail", "Available")},
			want: entity.StatusAvailable,
		},
		{
			name: "available marker on auction",
			raw:  service.RawResponse{FinalURL: pageURL, Body: page("tm-status-avail", "On auction")},
			want: entity.StatusOnAuction,
		},
		{
			name: "unavailable marker",
			raw: service.RawResponse{
				FinalURL: pageURL,
				Body:     `<div class="table-cell-value tm-value tm-status-unavail">Unavailable</div>`,
			},
			want: entity.StatusUnavailable,
		},
		{
			name: "no markers falls back to taken",
			raw:  service.RawResponse{FinalURL: pageURL, Body: "<html><body>maintenance</body></html>"},
			want: entity.StatusTaken,
		},
		{
			name: "empty response falls back to taken",
			raw:  service.RawResponse{},
			want: entity.StatusTaken,
		},
	}

	c := New(DefaultMarkers())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			require.Equal(t, tt.want, c.Classify(&raw).Status)
		})
	}
}

func TestClassify_NilResponse(t *testing.T) {
	require.Equal(t, entity.StatusTaken, New(DefaultMarkers()).Classify(nil).Status)
}

func TestClassify_UnparsableURLStillChecksQuery(t *testing.T) {
	c := New(DefaultMarkers())
	raw := &service.RawResponse{FinalURL: "https://fragment.com/%zz?query=bob"}
	require.Equal(t, entity.StatusAvailable, c.Classify(raw).Status)
}

func TestClassify_AuctionTextDisabled(t *testing.T) {
	markers := DefaultMarkers()
	markers.AuctionText = ""
	c := New(markers)

	raw := &service.RawResponse{FinalURL: pageURL, Body: page("tm-status-avail", "On auction")}
	require.Equal(t, entity.StatusAvailable, c.Classify(raw).Status)
}
