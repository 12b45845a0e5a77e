package source

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func TestParseHumanCount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1.2M", 1_200_000, true},
		{"830K", 830_000, true},
		{"2.5k", 2_500, true},
		{"1B", 1_000_000_000, true},
		{"250,000", 250_000, true},
		{"12", 12, true},
		{"", 0, false},
		{"subscribers", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseHumanCount(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestSubscriberRegex(t *testing.T) {
	m := subscriberRe.FindStringSubmatch(`{"text":"1.2M subscribers"}`)
	require.Len(t, m, 2)
	n, ok := parseHumanCount(m[1])
	require.True(t, ok)
	assert.EqualValues(t, 1_200_000, n)

	m = videoCountRe.FindStringSubmatch(`"843 videos"`)
	require.Len(t, m, 2)
	n, ok = parseHumanCount(m[1])
	require.True(t, ok)
	assert.EqualValues(t, 843, n)
}

const searchFixture = `{
  "contents": {
    "sectionListRenderer": {
      "contents": [
        {
          "itemSectionRenderer": {
            "contents": [
              {
                "videoRenderer": {
                  "videoId": "abc123",
                  "title": {"runs": [{"text": "Topology explained"}]},
                  "ownerText": {
                    "runs": [
                      {
                        "text": "Topology Talks",
                        "navigationEndpoint": {
                          "browseEndpoint": {
                            "browseId": "UC001",
                            "canonicalBaseUrl": "/@topologytalks"
                          }
                        }
                      }
                    ]
                  },
                  "detailedMetadataSnippets": [
                    {"snippetText": {"runs": [{"text": "open sets and friends"}]}}
                  ],
                  "viewCountText": {"simpleText": "12,345 views"},
                  "publishedTimeText": {"simpleText": "2 days ago"}
                }
              },
              {
                "videoRenderer": {
                  "videoId": "noowner",
                  "title": {"runs": [{"text": "Orphan video"}]}
                }
              },
              {"shelfRenderer": {"title": {"simpleText": "People also watched"}}}
            ]
          }
        }
      ]
    }
  }
}`

func TestWalkVideoRenderers(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(searchFixture), &doc))

	items := walkVideoRenderers(doc, 10)
	require.Len(t, items, 1, "renderer without an owner channel is skipped")

	it := items[0]
	assert.Equal(t, "UC001", it.EntityID)
	assert.Equal(t, "Topology Talks", it.EntityName)
	assert.Equal(t, "https://youtube.com/@topologytalks", it.EntityURL)
	assert.Equal(t, "abc123", it.ItemID)
	assert.Equal(t, "Topology explained", it.Title)
	assert.Equal(t, "open sets and friends", it.Description)
	assert.Equal(t, "12,345 views", it.Engagement)
	assert.Equal(t, "2 days ago", it.PublishedText)
}

func TestWalkVideoRenderersRespectsLimit(t *testing.T) {
	renderers := make([]any, 0, 5)
	for i := 0; i < 5; i++ {
		renderers = append(renderers, map[string]any{
			"videoRenderer": map[string]any{
				"videoId": "v",
				"title":   map[string]any{"runs": []any{map[string]any{"text": "t"}}},
				"ownerText": map[string]any{"runs": []any{map[string]any{
					"text": "c",
					"navigationEndpoint": map[string]any{
						"browseEndpoint": map[string]any{"browseId": "UC"},
					},
				}}},
			},
		})
	}
	doc := map[string]any{"contents": renderers}

	items := walkVideoRenderers(doc, 3)
	assert.Len(t, items, 3)
}

func TestClassifyStatus(t *testing.T) {
	assert.NoError(t, classifyStatus("q", 200))

	err := classifyStatus("q", 429)
	require.True(t, domain.IsTransient(err))
	assert.Equal(t, 30*time.Second, domain.CooldownOf(err))

	assert.True(t, domain.IsPermanent(classifyStatus("q", 403)))
	assert.True(t, domain.IsPermanent(classifyStatus("q", 401)))
	assert.True(t, domain.IsTransient(classifyStatus("q", 503)))
	assert.True(t, domain.IsPermanent(classifyStatus("q", 404)))
}

func TestBuildExcerpt(t *testing.T) {
	assert.Empty(t, buildExcerpt("", "", 5000))
	assert.Empty(t, buildExcerpt("  ", "\n", 5000))

	got := buildExcerpt("Entropy explained", "A walk through the second law.", 5000)
	assert.Equal(t, "Title: Entropy explained\n\nDescription: A walk through the second law.", got)

	long := buildExcerpt("T", strings.Repeat("x", 200), 50)
	assert.Len(t, long, 50)

	// truncation never splits a rune
	runes := buildExcerpt("T", strings.Repeat("é", 200), 50)
	assert.True(t, utf8.ValidString(runes))
	assert.LessOrEqual(t, len(runes), 50)
}
