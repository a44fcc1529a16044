package flashcard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/zhcards/pkg/dictionary"
)

var nihao = dictionary.HydratedEntry{
	Simplified:  "你好",
	Traditional: "你好",
	Pinyin:      "nǐ hǎo",
	Zhuyin:      "ㄋㄧˇ ㄏㄠˇ",
	Glosses:     []string{"hello", "hi"},
}

var guojia = dictionary.HydratedEntry{
	Simplified:  "国家",
	Traditional: "國家",
	Pinyin:      "guó jiā",
	Zhuyin:      "ㄍㄨㄛˊ ㄐㄧㄚ",
	Glosses:     []string{"country", "nation", "state"},
}

func TestFromEntry(t *testing.T) {
	c := FromEntry(nihao, []string{"hsk1", "greeting"})
	assert.Equal(t, Card{
		Simplified: "你好",
		Pinyin:     "nǐ hǎo",
		Zhuyin:     "ㄋㄧˇ ㄏㄠˇ",
		Definition: "hello; hi",
		Tags:       "hsk1 greeting",
	}, c)
	assert.Len(t, c.Record(), len(Columns))

	c = FromEntry(guojia, nil)
	assert.Equal(t, "國家", c.Traditional)
}

func TestFromPicks(t *testing.T) {
	c, err := FromPicks(guojia, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, "country; state", c.Definition)
	assert.Equal(t, "nation", c.ExtraDefinition)
	assert.Equal(t, "國家", c.Traditional)

	c, err = FromPicks(guojia, []int{0, 1, 2})
	require.NoError(t, err)
	assert.Empty(t, c.ExtraDefinition)

	_, err = FromPicks(guojia, []int{3})
	var pe *PickError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Pick)

	_, err = FromPicks(guojia, nil)
	assert.Error(t, err)
}

func TestCardString(t *testing.T) {
	c, err := FromPicks(guojia, []int{0})
	require.NoError(t, err)
	assert.Equal(t, "国家 | 國家 | guó jiā | ㄍㄨㄛˊ ㄐㄧㄚ | country | (nation; state)", c.String())
}

func TestCSVStoreAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck", "cards.csv")
	s := NewCSVStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, FromEntry(nihao, nil)))
	c, err := FromPicks(guojia, []int{1})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "你好,,nǐ hǎo,ㄋㄧˇ ㄏㄠˇ,,,hello; hi,,,,", lines[0])

	cards, err := ReadCards(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, c, cards[1])
}

func TestReadCardsFormats(t *testing.T) {
	src := strings.Join(Columns, ",") + "\n" +
		"好,,hǎo,ㄏㄠˇ,good,well,,,adj\n" +
		"国,國,guó,ㄍㄨㄛˊ,,,country,,,,\n"
	cards, err := ReadCards(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "good", cards[0].Definition)
	assert.Equal(t, "well", cards[0].ExtraDefinition)
	assert.Equal(t, "adj", cards[0].Tags)
	assert.Equal(t, "國", cards[1].Traditional)
	assert.Equal(t, "country", cards[1].Definition)

	_, err = ReadCards(strings.NewReader("a,b,c\n"))
	assert.Error(t, err)
}

type fakeFinder map[string][]dictionary.HydratedEntry

func (f fakeFinder) FindByScript(text string) []dictionary.HydratedEntry { return f[text] }

func TestComplete(t *testing.T) {
	le := dictionary.HydratedEntry{Simplified: "了", Traditional: "了", Pinyin: "le", Zhuyin: "ㄌㄜ˙", Glosses: []string{"particle"}}
	liao := dictionary.HydratedEntry{Simplified: "了", Traditional: "瞭", Pinyin: "liǎo", Zhuyin: "ㄌㄧㄠˇ", Glosses: []string{"to understand"}}
	f := fakeFinder{"了": {le, liao}, "你好": {nihao}}

	c, changed := Complete(Card{Simplified: "你好"}, f)
	assert.True(t, changed)
	assert.Equal(t, "nǐ hǎo", c.Pinyin)
	assert.Equal(t, "hello; hi", c.Definition)
	assert.Empty(t, c.Traditional)

	c, changed = Complete(Card{Simplified: "了", Traditional: "瞭"}, f)
	assert.True(t, changed)
	assert.Equal(t, "liǎo", c.Pinyin)
	assert.Equal(t, "to understand", c.Definition)

	full := Card{Simplified: "了", Pinyin: "x", Zhuyin: "y", Definition: "z"}
	c, changed = Complete(full, f)
	assert.False(t, changed)
	assert.Equal(t, full, c)

	_, changed = Complete(Card{Simplified: "不"}, f)
	assert.False(t, changed)
}
