package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/streamchapters/internal/chapter"

	"github.com/v0xg/streamchapters/internal/controller"
)

var _ controller.Invoker = (*Target)(nil)

func TestMatchesTarget(t *testing.T) {
	hosts := []string{"sharepoint.com", "microsoftstream.com"}

	tests := []struct {
		name  string
		url   string
		match string
		want  bool
	}{
		{"sharepoint tenant", "https://contoso.sharepoint.com/sites/x/_layouts/15/stream.aspx?id=1", "", true},
		{"stream classic", "https://web.microsoftstream.com/video/abc", "", true},
		{"bare host", "https://sharepoint.com/", "", true},
		{"host with port", "https://contoso.sharepoint.com:443/x", "", true},
		{"lookalike host", "https://sharepoint.com.evil.example/x", "", false},
		{"host in path only", "https://example.com/sharepoint.com", "", false},
		{"suffix without dot", "https://notsharepoint.com/x", "", false},
		{"blank tab", "about:blank", "", false},
		{"explicit match", "https://example.com/video/42", "video/42", true},
		{"explicit match miss", "https://contoso.sharepoint.com/x", "video/42", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesTarget(tt.url, tt.match, hosts))
		})
	}
}

func TestMatchesTarget_IgnoresBlankHosts(t *testing.T) {
	assert.False(t, matchesTarget("https://example.com", "", []string{"", "  "}))
	assert.True(t, matchesTarget("https://A.SharePoint.com/x", "", []string{" SharePoint.com "}))
}

func TestNoTarget_ListsOpenPages(t *testing.T) {
	open := []PageInfo{
		{URL: "about:blank"},
		{URL: "https://example.com/video/1", Title: "Other"},
	}

	tests := []struct {
		name  string
		match string
		open  []PageInfo
		want  string
	}{
		{"explicit match", "stream.aspx", open, `no open page matches "stream.aspx"; open pages: about:blank, https://example.com/video/1`},
		{"configured hosts", "", open, "open a Stream video page first (sharepoint.com, microsoftstream.com); open pages: about:blank, https://example.com/video/1"},
		{"nothing open", "", nil, "open a Stream video page first (sharepoint.com, microsoftstream.com); no pages are open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := noTarget(tt.match, []string{"sharepoint.com", "microsoftstream.com"}, tt.open)
			require.Error(t, err)
			assert.Equal(t, chapter.KindNoTarget, chapter.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
