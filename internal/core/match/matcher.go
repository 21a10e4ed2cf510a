package match

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

// MatchType 比對類型
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchSynonym MatchType = "synonym"
	MatchPartial MatchType = "partial"
	MatchCommon  MatchType = "common"
	MatchNone    MatchType = "none"
)

// 比對門檻與品質常數
const (
	// EdgeQualityThreshold 建立食材→食譜邊與判定可用的最低品質
	EdgeQualityThreshold = 0.70
	// PartialOverlapThreshold 部分比對的最低核心詞重疊率
	PartialOverlapThreshold = 0.75

	synonymBaseQuality   = 0.92
	synonymPeerQuality   = 0.86
	synonymConfidence    = 0.9
	partialBaseQuality   = 0.72
	partialQualitySlope  = 0.16
	containmentScore     = 0.8
	containmentMinRatio  = 0.75
	containmentMinLength = 4
)

// IngredientMatch 比對結果；MatchedName 為空時 Quality 必為 0
type IngredientMatch struct {
	MatchedName string    `json:"matched_name"`
	Quality     float64   `json:"quality"`
	MatchType   MatchType `json:"match_type"`
	Confidence  float64   `json:"confidence"`
}

// NoMatch 無可接受的比對
func NoMatch() IngredientMatch {
	return IngredientMatch{MatchType: MatchNone}
}

// Matched 是否達到建立邊的門檻
func (m IngredientMatch) Matched() bool {
	return m.MatchedName != "" && m.Quality >= EdgeQualityThreshold
}

// Matcher 食材名稱模糊比對器，無狀態，可併發使用
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher 創建比對器；logger 為 nil 時不輸出
func NewMatcher(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{logger: logger}
}

// FindBestMatch 在所有候選中找出品質最高的比對
func (m *Matcher) FindBestMatch(name string, candidates []string) IngredientMatch {
	best := NoMatch()
	for _, candidate := range candidates {
		result := m.Match(name, candidate)
		if result.Quality <= 0 {
			continue
		}
		if result.Quality > best.Quality ||
			(result.Quality == best.Quality && best.MatchType == MatchCommon && result.MatchType != MatchCommon) {
			best = result
		}
	}

	if best.MatchedName != "" {
		m.logger.Debug("最佳比對",
			zap.String("name", name),
			zap.String("matched", best.MatchedName),
			zap.String("type", string(best.MatchType)),
			zap.Float64("quality", best.Quality),
		)
	}
	return best
}

// Match 比對單一候選
func (m *Matcher) Match(name, candidate string) IngredientMatch {
	if IsStaple(candidate) {
		return IngredientMatch{MatchedName: candidate, Quality: 1.0, MatchType: MatchCommon, Confidence: 1.0}
	}

	a := newSide(name)
	b := newSide(candidate)
	if a.normalized == "" || b.normalized == "" {
		return NoMatch()
	}

	if reason := rejectReason(a, b); reason != "" {
		m.logger.Debug("拒絕比對",
			zap.String("name", name),
			zap.String("candidate", candidate),
			zap.String("reason", reason),
		)
		return NoMatch()
	}

	if a.normalized == b.normalized {
		return IngredientMatch{MatchedName: candidate, Quality: 1.0, MatchType: MatchExact, Confidence: 1.0}
	}

	if q := synonymQuality(a, b); q > 0 {
		return IngredientMatch{MatchedName: candidate, Quality: q, MatchType: MatchSynonym, Confidence: synonymConfidence}
	}

	if !categoriesCompatible(a.tokens, b.tokens) {
		return NoMatch()
	}

	overlap := math.Min(coreOverlap(a.tokens, b.tokens), coreOverlap(b.tokens, a.tokens))
	if overlap >= PartialOverlapThreshold {
		return IngredientMatch{
			MatchedName: candidate,
			Quality:     partialBaseQuality + (overlap-PartialOverlapThreshold)*partialQualitySlope,
			MatchType:   MatchPartial,
			Confidence:  overlap,
		}
	}
	return NoMatch()
}

// Quality 兩個名稱的比對品質
func (m *Matcher) Quality(a, b string) float64 {
	return m.Match(a, b).Quality
}

// IsStaple 是否為永遠可取得的基本物資（水、冰）
func IsStaple(name string) bool {
	_, ok := staples[Normalize(name)]
	return ok
}

// Category 推斷食物分類，無法判定時回傳空字串
func Category(name string) string {
	return categoryOf(Tokenize(name))
}

type side struct {
	normalized string
	words      []string
	tokens     []string
	key        string
}

func newSide(text string) side {
	s := side{normalized: Normalize(text)}
	s.words = Words(text)
	s.tokens = Tokenize(text)
	s.key = tokenKey(s.tokens)
	return s
}

// rejectReason 回傳拒絕原因，空字串表示通過
func rejectReason(a, b side) string {
	for _, p := range avoidPatterns {
		if avoidConflict(p, a.words, b.words) || avoidConflict(p, b.words, a.words) {
			return "avoid:" + p.base
		}
	}

	if compoundConflict(a, b) {
		return "compound"
	}

	if oilConflict(a.words, b.words) {
		return "oil"
	}
	return ""
}

// avoidConflict 一方為基底，另一方帶有基底不應搭配的修飾詞
func avoidConflict(p avoidPattern, base, other []string) bool {
	if !contains(base, p.base) {
		return false
	}
	return containsAny(other, p.avoid) && !containsAny(base, p.avoid)
}

// compoundConflict 共用核心詞但僅一方帶複合食品指示詞
func compoundConflict(a, b side) bool {
	shared := false
	for _, t := range a.tokens {
		if contains(b.tokens, t) {
			shared = true
			break
		}
	}
	if !shared {
		return false
	}

	aCompound := compoundWords(a.words)
	bCompound := compoundWords(b.words)
	if sameSet(aCompound, bCompound) {
		return false
	}

	// 同義表登錄的片語不視為複合食品
	return synonymQuality(a, b) == 0
}

func compoundWords(words []string) map[string]struct{} {
	found := make(map[string]struct{})
	for _, w := range words {
		if _, ok := compoundIndicators[w]; ok {
			found[w] = struct{}{}
		}
	}
	return found
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// oilConflict 兩者皆為油品且種類不同（可互換者除外）
func oilConflict(a, b []string) bool {
	if !contains(a, "oil") || !contains(b, "oil") {
		return false
	}
	aType := firstOf(a, oilTypes)
	bType := firstOf(b, oilTypes)
	if aType == "" || bType == "" || aType == bType {
		return false
	}
	if eq, ok := oilEquivalents[aType]; ok {
		if _, same := eq[bType]; same {
			return false
		}
	}
	return true
}

func firstOf(words []string, set map[string]struct{}) string {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return w
		}
	}
	return ""
}

// synonymQuality 兩者解析到同一同義詞條目時的品質，否則為 0
func synonymQuality(a, b side) float64 {
	if a.key == "" || b.key == "" {
		return 0
	}

	best := 0.0
	for _, entry := range compiledSynonyms {
		aRole := entry.role(a.key)
		bRole := entry.role(b.key)
		if aRole == roleNone || bRole == roleNone {
			continue
		}

		q := synonymPeerQuality
		if aRole == roleBase || bRole == roleBase || a.key == b.key {
			q = synonymBaseQuality
		}
		if q > best {
			best = q
		}
	}
	return best
}

type synonymRole int

const (
	roleNone synonymRole = iota
	roleBase
	roleSynonym
)

type compiledSynonym struct {
	baseKey     string
	synonymKeys map[string]struct{}
}

func (c compiledSynonym) role(key string) synonymRole {
	if key == c.baseKey {
		return roleBase
	}
	if _, ok := c.synonymKeys[key]; ok {
		return roleSynonym
	}
	return roleNone
}

var compiledSynonyms = compileSynonyms(synonymTable)

func compileSynonyms(table []synonymEntry) []compiledSynonym {
	out := make([]compiledSynonym, 0, len(table))
	for _, entry := range table {
		c := compiledSynonym{
			baseKey:     tokenKey(Tokenize(entry.base)),
			synonymKeys: make(map[string]struct{}, len(entry.synonyms)),
		}
		for _, syn := range entry.synonyms {
			key := tokenKey(Tokenize(syn))
			if key != "" && key != c.baseKey {
				c.synonymKeys[key] = struct{}{}
			}
		}
		out = append(out, c)
	}
	return out
}

func categoryOf(tokens []string) string {
	for _, cat := range foodCategories {
		for _, t := range tokens {
			if _, ok := cat.items[t]; ok {
				return cat.name
			}
		}
	}
	return ""
}

// categoriesCompatible 分類相同、未知或在白名單內
func categoriesCompatible(a, b []string) bool {
	ca := categoryOf(a)
	cb := categoryOf(b)
	if ca == "" || cb == "" || ca == cb {
		return true
	}
	for _, pair := range compatibleCategories {
		if (pair[0] == ca && pair[1] == cb) || (pair[0] == cb && pair[1] == ca) {
			return true
		}
	}
	return false
}

// coreOverlap 單向核心詞重疊率，核心食材詞權重加倍
func coreOverlap(from, to []string) float64 {
	if len(from) == 0 || len(to) == 0 {
		return 0
	}

	total, possible := 0.0, 0.0
	for _, f := range from {
		weight := 1.0
		if _, ok := coreWords[f]; ok {
			weight = 2.0
		}
		possible += weight

		best := 0.0
		for _, t := range to {
			if f == t {
				best = weight
				break
			}
			if containedWord(f, t) {
				best = math.Max(best, weight*containmentScore)
			}
		}
		total += best
	}
	return total / possible
}

// containedWord 較短詞包含於較長詞中且長度達較長詞的 75%
func containedWord(a, b string) bool {
	if len(a) < containmentMinLength || len(b) < containmentMinLength {
		return false
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if float64(len(short)) < float64(len(long))*containmentMinRatio {
		return false
	}
	return strings.Contains(long, short)
}
