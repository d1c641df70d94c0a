package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmeta/douban/metadata"
)

const searchItemNorwegianWood = `
<div class="result">
  <div class="pic">
    <a class="nbg" href="https://www.douban.com/link2/?url=https%3A%2F%2Fbook.douban.com%2Fsubject%2F1046265%2F&amp;query=%E6%8C%AA%E5%A8%81%E7%9A%84%E6%A3%AE%E6%9E%97&amp;cat_id=1001" target="_blank">
      <img src="https://img2.doubanio.com/view/subject/s/public/s1074291.jpg">
    </a>
  </div>
  <div class="content">
    <div class="title">
      <h3>
        <span>[书籍]</span>
        <a href="https://www.douban.com/link2/?url=https%3A%2F%2Fbook.douban.com%2Fsubject%2F1046265%2F&amp;query=%E6%8C%AA%E5%A8%81%E7%9A%84%E6%A3%AE%E6%9E%97&amp;cat_id=1001" target="_blank" title="挪威的森林">挪威的森林</a>
      </h3>
      <div class="rating-info">
        <span class="allstar40"></span>
        <span class="rating_nums">8.0</span>
        <span>(438383人评价)</span>
        <span class="subject-cast">[日] 村上春树 / 上海译文出版社 / 2007</span>
      </div>
    </div>
    <p>这是一部动人心弦的、平缓舒雅的、略带感伤的恋爱小说。</p>
  </div>
</div>`

const searchItemThreeBody = `
<div class="result">
  <div class="content">
    <div class="title">
      <h3>
        <span>[书籍]</span>
        <a href="https://book.douban.com/subject/2567698/" target="_blank" title="三体">三体</a>
      </h3>
      <div class="rating-info">
        <span class="rating_nums">8.9</span>
        <span class="subject-cast">刘慈欣 / 重庆出版社 / 2008-1</span>
      </div>
    </div>
  </div>
</div>`

func searchEnvelope(t *testing.T, items ...string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"items": items, "total": len(items)})
	require.NoError(t, err)
	return payload
}

func TestSearch(t *testing.T) {
	var gotQuery, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("t")
		_, _ = w.Write(searchEnvelope(t, searchItemNorwegianWood, searchItemThreeBody))
	}))
	defer server.Close()

	client := NewClient(
		WithSearchURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimiter(testLimiter()),
	)

	entries, err := client.Search(context.Background(), "挪威的森林 村上春树", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "挪威的森林 村上春树", gotQuery)
	assert.Equal(t, "book", gotType)

	first := entries[0]
	assert.Equal(t, "1046265", first.SubjectID)
	assert.Equal(t, "挪威的森林", first.Title)
	assert.Equal(t, 8.0, first.Rating)
	assert.Equal(t, []string{"[日] 村上春树"}, first.Authors)
	assert.Equal(t, "上海译文出版社", first.Publisher)
	assert.Equal(t, "2007", first.PubDate)

	second := entries[1]
	assert.Equal(t, "2567698", second.SubjectID)
	assert.Equal(t, "三体", second.Title)
	assert.Equal(t, 8.9, second.Rating)
	assert.Equal(t, []string{"刘慈欣"}, second.Authors)
	assert.Equal(t, "重庆出版社", second.Publisher)
	assert.Equal(t, "2008-1", second.PubDate)
}

func TestSearchLimit(t *testing.T) {
	item := func(id, title string) string {
		return fmt.Sprintf(`<div class="result"><h3><a href="https://book.douban.com/subject/%s/" title="%s">%s</a></h3></div>`, id, title, title)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(searchEnvelope(t, item("1", "one"), item("2", "two"), item("3", "three")))
	}))
	defer server.Close()

	client := NewClient(
		WithSearchURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimiter(testLimiter()),
	)

	entries, err := client.Search(context.Background(), "one", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].SubjectID)
	assert.Equal(t, "2", entries[1].SubjectID)
}

func TestParseSearchMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "<html>rate limited maybe</html>"},
		{"items key missing", `{"total":3}`},
		{"items null", `{"items":null}`},
		{"items wrong type", `{"items":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSearch([]byte(tt.payload))
			require.Error(t, err)
			le, ok := metadata.AsLookupError(err)
			require.True(t, ok)
			assert.Equal(t, metadata.FailMalformedPayload, le.Kind)
		})
	}
}

func TestParseSearchEmptyItems(t *testing.T) {
	entries, err := parseSearch([]byte(`{"items":[],"total":0}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseSearchSkipsJunkSnippets(t *testing.T) {
	payload := searchEnvelope(t, `<div class="result"><p>广告</p></div>`, searchItemThreeBody)

	entries, err := parseSearch(payload)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2567698", entries[0].SubjectID)
}

func TestSubjectIDFromHref(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"direct", "https://book.douban.com/subject/2567698/", "2567698"},
		{"redirect escaped", "https://www.douban.com/link2/?url=https%3A%2F%2Fbook.douban.com%2Fsubject%2F1046265%2F&query=x", "1046265"},
		{"no subject", "https://www.douban.com/group/123/", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectIDFromHref(tt.href))
		})
	}
}

func TestSplitCast(t *testing.T) {
	tests := []struct {
		name          string
		cast          string
		wantAuthors   []string
		wantPublisher string
		wantPubDate   string
	}{
		{"author publisher year", "村上春树 / 上海译文出版社 / 2007", []string{"村上春树"}, "上海译文出版社", "2007"},
		{"translator listed too", "村上春树 / 林少华 / 上海译文出版社 / 2007-7", []string{"村上春树", "林少华"}, "上海译文出版社", "2007-7"},
		{"no year", "刘慈欣 / 重庆出版社", []string{"刘慈欣"}, "重庆出版社", ""},
		{"author only", "刘慈欣", []string{"刘慈欣"}, "", ""},
		{"empty", "", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authors, publisher, pubDate := splitCast(tt.cast)
			assert.Equal(t, tt.wantAuthors, authors)
			assert.Equal(t, tt.wantPublisher, publisher)
			assert.Equal(t, tt.wantPubDate, pubDate)
		})
	}
}

func TestSearchEntryCandidate(t *testing.T) {
	entry := SearchEntry{
		SubjectID: "2567698",
		Title:     "三体",
		Rating:    8.9,
		Authors:   []string{"刘慈欣"},
		Publisher: "重庆出版社",
		PubDate:   "2008-1",
	}

	cand := entry.Candidate()
	assert.Equal(t, "2567698", cand.Identifiers[metadata.IdentifierDouban])
	assert.Equal(t, "三体", cand.Title)
	assert.Equal(t, 8.9, cand.Rating)
	assert.Equal(t, []string{"刘慈欣"}, cand.Authors)
	assert.Equal(t, "重庆出版社", cand.Publisher)
	assert.Equal(t, "2008-1", cand.PubDate)
	assert.Empty(t, cand.CoverURL)
}
