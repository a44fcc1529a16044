package phonetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberedToAccented(t *testing.T) {
	tr := New()
	tests := []struct {
		in, want string
	}{
		{"ni3 hao3", "nǐ hǎo"},
		{"liu2", "liú"},
		{"hou4", "hòu"},
		{"gui4", "guì"},
		{"xue2 sheng5", "xué sheng"},
		{"lu:4", "lǜ"},
		{"nu:3 ren2", "nǚ rén"},
		{"lv3", "lǚ"},
		{"Bei3 jing1", "Běi jīng"},
		{"A A zhi4", "A A zhì"},
		{"xx5", "xx"},
		{"ka3 la1 O K", "kǎ lā O K"},
		{"m2", "\u1e3f"},
		{"yi1 , er4", "yī , èr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.NumberedToAccented(tt.in))
		})
	}
}

func TestNumberedToZhuyin(t *testing.T) {
	tr := New()
	tests := []struct {
		in, want string
	}{
		{"ni3 hao3", "ㄋㄧˇ ㄏㄠˇ"},
		{"zhong1 guo2", "ㄓㄨㄥ ㄍㄨㄛˊ"},
		{"shi4", "ㄕˋ"},
		{"zi4", "ㄗˋ"},
		{"ju2", "ㄐㄩˊ"},
		{"xue2", "ㄒㄩㄝˊ"},
		{"qun2", "ㄑㄩㄣˊ"},
		{"yuan2", "ㄩㄢˊ"},
		{"lu:4", "ㄌㄩˋ"},
		{"de5", "ㄉㄜ˙"},
		{"er4", "ㄦˋ"},
		{"xiong2", "ㄒㄩㄥˊ"},
		{"wo3", "ㄨㄛˇ"},
		{"hua1 r5", "ㄏㄨㄚ ㄦ˙"},
		{"A A zhi4", "ㄚ ㄚ ㄓˋ"},
		{"ka3 la1 O K", "ㄎㄚˇ ㄌㄚ ㄛ K"},
		{"xx5", "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.NumberedToZhuyin(tt.in))
		})
	}
}

func TestCustomTableTakesPrecedence(t *testing.T) {
	tr := New(WithTable(Chain(MapTable{"ma": "MA"}, Standard())))
	assert.Equal(t, "MAˇ ㄇㄧ", tr.NumberedToZhuyin("ma3 mi1"))
}

func TestIsPhonetic(t *testing.T) {
	tr := New()
	tests := []struct {
		in   string
		want bool
	}{
		{"liu", true},
		{"liu2", true},
		{"ni3hao3", true},
		{"ni3 hao3", true},
		{"nihao", true},
		{"nǐhǎo", true},
		{"Běijīng", true},
		{"xi'an", true},
		{"lv4", true},
		{"nu:3", true},
		{"zhuang4", true},
		{"m2", true},
		{"ng2", true},
		{"hng", true},
		{"asdf123", false},
		{"hello", false},
		{"ni7", false},
		{"", false},
		{"   ", false},
		{"你好", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.IsPhonetic(tt.in))
		})
	}
}

func TestIsScript(t *testing.T) {
	tr := New()
	assert.True(t, tr.IsScript("你好"))
	assert.True(t, tr.IsScript("國"))
	assert.True(t, tr.IsScript("卡拉OK"))
	assert.True(t, tr.IsScript("哈利·波特"))
	assert.False(t, tr.IsScript("asdf123"))
	assert.False(t, tr.IsScript("ni3hao3"))
	assert.False(t, tr.IsScript("你 好"))
	assert.False(t, tr.IsScript(""))
}

func TestAccentedToNumbered(t *testing.T) {
	tr := New()
	tests := []struct {
		in, want string
	}{
		{"nǐhǎo", "ni3 hao3"},
		{"nǐ hǎo", "ni3 hao3"},
		{"liú", "liu2"},
		{"liu", "liu"},
		{"xiānsheng", "xian1 sheng"},
		{"Xī'ān", "Xi1 an1"},
		{"Běijīng", "Bei3 jing1"},
		{"Lǘ", "Lu:2"},
		{"lǜ", "lu:4"},
		{"nü", "nu:"},
		{"ni3hǎo", "ni3 hao3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := tr.AccentedToNumbered(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := tr.AccentedToNumbered("qwrt")
	assert.False(t, ok)
}

func TestHanziToNumbered(t *testing.T) {
	tr := New()
	assert.Equal(t, "zhong1 guo2", tr.HanziToNumbered("中国"))
	assert.Empty(t, tr.HanziToNumbered("abc"))
}

func TestStandardInventoryComplete(t *testing.T) {
	for _, syl := range []string{"zhi", "chi", "shi", "ri", "zi", "ci", "si", "nüe", "lüe", "jiong", "shuang", "yong", "weng", "er"} {
		_, ok := Standard().Lookup(syl)
		assert.Truef(t, ok, "missing syllable %q", syl)
	}
	_, ok := Standard().Lookup("bia")
	assert.False(t, ok)
}
