package match

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// 正規化時移除的標點
const strippedPunctuation = `.,;:!?'"()`

// Normalize 將食材名稱轉為比對用的標準形式
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) || strings.ContainsRune(strippedPunctuation, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return strings.Join(strings.Fields(norm.NFC.String(b.String())), " ")
}

// Words 回傳正規化後的所有單字（不過濾停用詞）
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}

// Tokenize 回傳核心詞：過濾短詞、純數字與停用詞，核心食材詞排在前面
func Tokenize(text string) []string {
	words := Words(text)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 || isNumeric(w) {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		_, ci := coreWords[tokens[i]]
		_, cj := coreWords[tokens[j]]
		return ci && !cj
	})
	return tokens
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return w != ""
}

// tokenKey 將詞集合轉為與順序無關的鍵
func tokenKey(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)

	// 去除重複
	uniq := sorted[:1]
	for _, t := range sorted[1:] {
		if t != uniq[len(uniq)-1] {
			uniq = append(uniq, t)
		}
	}
	return strings.Join(uniq, " ")
}

func contains(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func containsAny(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
