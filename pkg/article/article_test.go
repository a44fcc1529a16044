package article

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>学习中文</title></head>
<body>
<nav>首页 | 关于</nav>
<article>
<h1>学习中文</h1>
<p>我们喜欢学习中文。中文很有意思！你喜欢学习吗？</p>
<p>每天学习一点，<ruby>汉字<rp>(</rp><rt>hànzì</rt><rp>)</rp></ruby>就不难了。我们一起学习吧。</p>
<p>学习语言需要时间，也需要耐心。只要坚持下去，我们一定会进步。</p>
</article>
</body></html>`

func TestFetchExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := Fetch(context.Background(), srv.Client(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Equal(t, "学习中文", a.Title)
	assert.Contains(t, a.Text, "我们喜欢学习中文")
	assert.NotContains(t, a.Text, "hànzì")
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL)
	assert.ErrorContains(t, err, "403")

	_, err = Fetch(context.Background(), nil, "not a url")
	assert.Error(t, err)
}

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "<ruby>汉字<rt>hànzì</rt></ruby>", "<ruby>汉字</ruby>"},
		{"with rp", "<ruby>漢字<rp>(</rp><rt>ㄏㄢˋ ㄗˋ</rt><rp>)</rp></ruby>", "<ruby>漢字</ruby>"},
		{"attributes", "<ruby class='a'>中<RT class='py'>zhōng</RT></ruby>", "<ruby class='a'>中</ruby>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(SanitizeRuby([]byte(tt.input))))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("你好！今天天气很好。你去吗？\n\n我去; 好的;OK?  ")
	assert.Equal(t, []string{"你好！", "今天天气很好。", "你去吗？", "我去; 好的;OK?"}, got)
	assert.Equal(t, []string{"没有标点"}, SplitSentences("没有标点"))
	assert.Empty(t, SplitSentences(" \n "))
}

func TestSegmenter(t *testing.T) {
	seg := NewSegmenter(slices.Values([]string{"中国", "中国人", "人", "喜欢", "学习", "中文", "卡拉OK"}))
	assert.Equal(t, []string{"中国人", "喜欢", "学习", "中文"}, seg.Segment("中国人喜欢学习中文。"))
	assert.Equal(t, []string{"我", "们", "喜欢", "卡拉OK"}, seg.Segment("我们 喜欢 卡拉OK!"))
	assert.Empty(t, seg.Segment("hello, world"))

	empty := NewSegmenter(slices.Values([]string(nil)))
	assert.Equal(t, []string{"中", "文"}, empty.Segment("中文"))
}

func TestVocabulary(t *testing.T) {
	seg := NewSegmenter(slices.Values([]string{"我们", "喜欢", "学习", "中文", "很", "有意思", "卡拉OK"}))
	text := strings.Join([]string{
		"我们喜欢学习中文。",
		"中文很有意思！",
		"我们学习卡拉OK。",
	}, "")
	words, err := Vocabulary(context.Background(), text, seg, 3)
	require.NoError(t, err)

	var got []string
	for _, w := range words {
		got = append(got, w.Text)
	}
	assert.Equal(t, []string{"我们", "学习", "中文", "喜欢", "很", "有意思"}, got)
	assert.Equal(t, 2, words[0].Count)
	assert.Equal(t, 1, words[len(words)-1].Count)
}

func TestVocabularyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seg := NewSegmenter(slices.Values([]string{"中文"}))
	_, err := Vocabulary(ctx, "中文。中文。", seg, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
