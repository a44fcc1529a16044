package phonetic

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// toneMarks holds the four marked forms of each vowel, indexed by tone-1.
var toneMarks = map[rune][4]rune{
	'a': {'ā', 'á', 'ǎ', 'à'},
	'e': {'ē', 'é', 'ě', 'è'},
	'i': {'ī', 'í', 'ǐ', 'ì'},
	'o': {'ō', 'ó', 'ǒ', 'ò'},
	'u': {'ū', 'ú', 'ǔ', 'ù'},
	'ü': {'ǖ', 'ǘ', 'ǚ', 'ǜ'},
	'A': {'Ā', 'Á', 'Ǎ', 'À'},
	'E': {'Ē', 'É', 'Ě', 'È'},
	'I': {'Ī', 'Í', 'Ǐ', 'Ì'},
	'O': {'Ō', 'Ó', 'Ǒ', 'Ò'},
	'U': {'Ū', 'Ú', 'Ǔ', 'Ù'},
	'Ü': {'Ǖ', 'Ǘ', 'Ǚ', 'Ǜ'},
}

// combiningMarks are used for vowel-less syllables such as ḿ or ň.
var combiningMarks = [4]rune{'\u0304', '\u0301', '\u030C', '\u0300'}

// unmarked maps a marked vowel back to its base vowel and tone.
var unmarked = buildUnmarked()

type markedVowel struct {
	base rune
	tone int
}

func buildUnmarked() map[rune]markedVowel {
	out := make(map[rune]markedVowel, len(toneMarks)*4)
	for base, marks := range toneMarks {
		for i, m := range marks {
			out[m] = markedVowel{base: base, tone: i + 1}
		}
	}
	return out
}

var (
	umlautReplacer = strings.NewReplacer("u:", "ü", "U:", "Ü")
	umlautWriter   = strings.NewReplacer("ü", "u:", "Ü", "U:")
)

// splitTone separates a trailing tone digit from a numbered syllable.
// tone is 0 when the token carries no digit.
func splitTone(token string) (letters string, tone int) {
	if len(token) < 2 {
		return token, 0
	}
	last := token[len(token)-1]
	if last >= '1' && last <= '5' {
		return token[:len(token)-1], int(last - '0')
	}
	return token, 0
}

// spellUmlaut rewrites u: and, for otherwise invalid syllables, v as ü.
func (t *Transcriber) spellUmlaut(letters string) string {
	out := umlautReplacer.Replace(letters)
	if !strings.ContainsAny(out, "vV") || t.known(strings.ToLower(out)) {
		return out
	}
	alt := strings.NewReplacer("v", "ü", "V", "Ü").Replace(out)
	if t.known(strings.ToLower(alt)) {
		return alt
	}
	return out
}

// markVowel places the tone mark on the vowel pinyin orthography selects:
// a or e first, then the o of ou, else the last vowel.
func markVowel(letters string, tone int) string {
	runes := []rune(letters)
	lower := []rune(strings.ToLower(letters))
	idx := -1
	for i, r := range lower {
		if r == 'a' || r == 'e' {
			idx = i
			break
		}
	}
	if idx < 0 {
		if i := strings.Index(string(lower), "ou"); i >= 0 {
			idx = len([]rune(string(lower)[:i]))
		}
	}
	if idx < 0 {
		for i := len(lower) - 1; i >= 0; i-- {
			if strings.ContainsRune("iouü", lower[i]) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		// Syllabic nasals (m, n, ng) carry the mark on the first letter.
		if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
			return letters
		}
		marked := string(runes[0]) + string(combiningMarks[tone-1]) + string(runes[1:])
		return norm.NFC.String(marked)
	}
	runes[idx] = toneMarks[runes[idx]][tone-1]
	return string(runes)
}

// NumberedToAccented converts numbered pinyin such as "ni3 hao3" into
// accented pinyin ("nǐ hǎo"). Tokens that are not syllables pass through.
func (t *Transcriber) NumberedToAccented(numbered string) string {
	tokens := strings.Split(numbered, " ")
	for i, tok := range tokens {
		letters, tone := splitTone(tok)
		letters = t.spellUmlaut(letters)
		if tone >= 1 && tone <= 4 {
			letters = markVowel(letters, tone)
		}
		tokens[i] = letters
	}
	return strings.Join(tokens, " ")
}

// NumberedToZhuyin converts numbered pinyin into zhuyin (bopomofo).
// Syllables missing from the table, such as Latin letters, are kept as
// written without their tone digit.
func (t *Transcriber) NumberedToZhuyin(numbered string) string {
	tokens := strings.Split(numbered, " ")
	for i, tok := range tokens {
		letters, tone := splitTone(tok)
		letters = t.spellUmlaut(letters)
		zy, ok := t.table.Lookup(strings.ToLower(letters))
		if !ok {
			tokens[i] = letters
			continue
		}
		tokens[i] = zy + zhuyinTones[tone]
	}
	return strings.Join(tokens, " ")
}

// stripMarks separates tone diacritics from the letters of s, keeping
// their case. marks[i] is the tone carried by letters[i], 0 when unmarked.
func stripMarks(s string) (letters []rune, marks []int) {
	s = umlautReplacer.Replace(norm.NFC.String(s))
	for _, r := range s {
		tone := 0
		if mv, ok := unmarked[r]; ok {
			r, tone = mv.base, mv.tone
		}
		switch r {
		case 'v':
			r = 'ü'
		case 'V':
			r = 'Ü'
		}
		letters = append(letters, r)
		marks = append(marks, tone)
	}
	return letters, marks
}

// AccentedToNumbered rewrites accented pinyin into numbered syllables
// separated by spaces. Syllables without a mark or digit stay toneless, so
// "liu" is not turned into "liu5". ü is written u: as CC-CEDICT does.
// ok is false when s does not segment into pinyin syllables.
func (t *Transcriber) AccentedToNumbered(s string) (string, bool) {
	var out []string
	for _, chunk := range splitChunks(s) {
		letters, marks := stripMarks(chunk)
		syllables, ok := t.parseChunk(letters, marks)
		if !ok {
			return "", false
		}
		out = append(out, syllables...)
	}
	if len(out) == 0 {
		return "", false
	}
	return umlautWriter.Replace(strings.Join(out, " ")), true
}

func splitChunks(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\'' || r == '’' || r == '-'
	})
}
