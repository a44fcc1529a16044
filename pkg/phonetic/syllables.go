package phonetic

import "strings"

// inventory lists the finals each initial combines with. Spellings are the
// written pinyin forms, so j/q/x take "u" where the sound is ü.
var inventory = map[string]string{
	"b":  "a o ai ei ao an en ang eng i ie iao ian in ing u",
	"p":  "a o ai ei ao ou an en ang eng i ie iao ian in ing u",
	"m":  "a o e ai ei ao ou an en ang eng i ie iao iu ian in ing u",
	"f":  "a o ei ou an en ang eng u",
	"d":  "a e ai ei ao ou an en ang eng ong i ia ie iao iu ian ing u uo ui uan un",
	"t":  "a e ai ei ao ou an ang eng ong i ie iao ian ing u uo ui uan un",
	"n":  "a e ai ei ao ou an en ang eng ong i ie iao iu ian in iang ing u uo uan ü üe",
	"l":  "a o e ai ei ao ou an ang eng ong i ia ie iao iu ian in iang ing u uo uan un ü üe",
	"g":  "a e ai ei ao ou an en ang eng ong u ua uo uai ui uan un uang",
	"k":  "a e ai ei ao ou an en ang eng ong u ua uo uai ui uan un uang",
	"h":  "a e ai ei ao ou an en ang eng ong u ua uo uai ui uan un uang",
	"j":  "i ia ie iao iu ian in iang ing iong u ue uan un",
	"q":  "i ia ie iao iu ian in iang ing iong u ue uan un",
	"x":  "i ia ie iao iu ian in iang ing iong u ue uan un",
	"zh": "a e i ai ei ao ou an en ang eng ong u ua uo uai ui uan un uang",
	"ch": "a e i ai ao ou an en ang eng ong u ua uo uai ui uan un uang",
	"sh": "a e i ai ei ao ou an en ang eng u ua uo uai ui uan un uang",
	"r":  "e i ao ou an en ang eng ong u ua uo ui uan un",
	"z":  "a e i ai ei ao ou an en ang eng ong u uo ui uan un",
	"c":  "a e i ai ao ou an en ang eng ong u uo ui uan un",
	"s":  "a e i ai ao ou an en ang eng ong u uo ui uan un",
}

var initialZhuyin = map[string]string{
	"b": "ㄅ", "p": "ㄆ", "m": "ㄇ", "f": "ㄈ",
	"d": "ㄉ", "t": "ㄊ", "n": "ㄋ", "l": "ㄌ",
	"g": "ㄍ", "k": "ㄎ", "h": "ㄏ",
	"j": "ㄐ", "q": "ㄑ", "x": "ㄒ",
	"zh": "ㄓ", "ch": "ㄔ", "sh": "ㄕ", "r": "ㄖ",
	"z": "ㄗ", "c": "ㄘ", "s": "ㄙ",
}

var finalZhuyin = map[string]string{
	"a": "ㄚ", "o": "ㄛ", "e": "ㄜ",
	"ai": "ㄞ", "ei": "ㄟ", "ao": "ㄠ", "ou": "ㄡ",
	"an": "ㄢ", "en": "ㄣ", "ang": "ㄤ", "eng": "ㄥ", "ong": "ㄨㄥ",
	"i": "ㄧ", "ia": "ㄧㄚ", "ie": "ㄧㄝ", "iao": "ㄧㄠ", "iu": "ㄧㄡ",
	"ian": "ㄧㄢ", "in": "ㄧㄣ", "iang": "ㄧㄤ", "ing": "ㄧㄥ", "iong": "ㄩㄥ",
	"u": "ㄨ", "ua": "ㄨㄚ", "uo": "ㄨㄛ", "uai": "ㄨㄞ", "ui": "ㄨㄟ",
	"uan": "ㄨㄢ", "un": "ㄨㄣ", "uang": "ㄨㄤ",
	"ü": "ㄩ", "üe": "ㄩㄝ", "üan": "ㄩㄢ", "ün": "ㄩㄣ",
}

// zeroInitial covers syllables written without a consonant initial,
// including the y-/w- spellings of medial finals.
var zeroInitial = map[string]string{
	"a": "ㄚ", "o": "ㄛ", "e": "ㄜ", "ê": "ㄝ",
	"ai": "ㄞ", "ei": "ㄟ", "ao": "ㄠ", "ou": "ㄡ",
	"an": "ㄢ", "en": "ㄣ", "ang": "ㄤ", "eng": "ㄥ", "er": "ㄦ",
	"yi": "ㄧ", "ya": "ㄧㄚ", "yo": "ㄧㄛ", "ye": "ㄧㄝ", "yai": "ㄧㄞ",
	"yao": "ㄧㄠ", "you": "ㄧㄡ", "yan": "ㄧㄢ", "yin": "ㄧㄣ",
	"yang": "ㄧㄤ", "ying": "ㄧㄥ", "yong": "ㄩㄥ",
	"wu": "ㄨ", "wa": "ㄨㄚ", "wo": "ㄨㄛ", "wai": "ㄨㄞ", "wei": "ㄨㄟ",
	"wan": "ㄨㄢ", "wen": "ㄨㄣ", "wang": "ㄨㄤ", "weng": "ㄨㄥ",
	"yu": "ㄩ", "yue": "ㄩㄝ", "yuan": "ㄩㄢ", "yun": "ㄩㄣ",
}

// apical initials swallow a bare "i" final: zhi is just ㄓ.
var apical = map[string]bool{"zh": true, "ch": true, "sh": true, "r": true, "z": true, "c": true, "s": true}

var zhuyinTones = [...]string{"", "", "ˊ", "ˇ", "ˋ", "˙"}

// standardSyllables maps every Mandarin syllable to its zhuyin spelling.
var standardSyllables = buildStandard()

func buildStandard() map[string]string {
	out := make(map[string]string, len(zeroInitial)+400)
	for syl, zy := range zeroInitial {
		out[syl] = zy
	}
	for initial, finals := range inventory {
		for _, final := range strings.Fields(finals) {
			out[initial+final] = composeZhuyin(initial, final)
		}
	}
	return out
}

func composeZhuyin(initial, final string) string {
	if final == "i" && apical[initial] {
		return initialZhuyin[initial]
	}
	if (initial == "j" || initial == "q" || initial == "x") && strings.HasPrefix(final, "u") {
		final = "ü" + strings.TrimPrefix(final, "u")
	}
	return initialZhuyin[initial] + finalZhuyin[final]
}

// SyllableTable resolves a toneless, lowercase syllable to zhuyin.
type SyllableTable interface {
	Lookup(syllable string) (string, bool)
}

// MapTable is a SyllableTable backed by a plain map.
type MapTable map[string]string

func (m MapTable) Lookup(syllable string) (string, bool) {
	zy, ok := m[syllable]
	return zy, ok
}

type chain []SyllableTable

func (c chain) Lookup(syllable string) (string, bool) {
	for _, t := range c {
		if zy, ok := t.Lookup(syllable); ok {
			return zy, true
		}
	}
	return "", false
}

// Chain consults tables in order and returns the first hit.
func Chain(tables ...SyllableTable) SyllableTable {
	return chain(tables)
}

// Standard returns the table of regular Mandarin syllables.
func Standard() SyllableTable {
	return MapTable(standardSyllables)
}

// Interjections covers the nasal interjections and the erhua suffix that
// CC-CEDICT writes as standalone syllables.
var Interjections = MapTable{
	"m":   "ㄇ",
	"n":   "ㄋ",
	"ng":  "ㄫ",
	"hm":  "ㄏㄇ",
	"hng": "ㄏㄫ",
	"r":   "ㄦ",
}
