package score

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gojp/kana"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// jpLegalMarkers are Japanese corporate-form markers removed wherever they
// appear. A company named 株式会社サンプル and a domain label "sample"
// should still match at full strength.
var jpLegalMarkers = []string{
	"株式会社", "有限会社", "合同会社", "合資会社", "合名会社",
	"一般社団法人", "一般財団法人", "医療法人", "学校法人",
	"(株)", "(有)", "㈱", "㈲",
}

// latinLegalTokens are Western corporate-form markers removed as whole
// words only, so names like "hokkaido" keep their "kk".
var latinLegalTokens = map[string]bool{
	"inc": true, "ltd": true, "co": true, "corp": true,
	"corporation": true, "llc": true, "kk": true, "k.k": true, "gk": true,
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeName prepares a company name for comparison: NFKC and width
// folding, lowercasing, legal marker removal, whitespace collapse.
func NormalizeName(name string) string {
	s := norm.NFKC.String(name)
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	for _, marker := range jpLegalMarkers {
		s = strings.ReplaceAll(s, marker, " ")
	}
	s = multiSpaceRe.ReplaceAllString(s, " ")

	var kept []string
	for _, tok := range strings.Fields(s) {
		if latinLegalTokens[strings.Trim(tok, ".,")] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// DomainLabel prepares a registrable domain for comparison against a name:
// the leftmost label with hyphens and underscores read as word breaks.
// "sample-holdings.co.jp" becomes "sample holdings".
func DomainLabel(domain string) string {
	label := domain
	if i := strings.IndexByte(domain, '.'); i > 0 {
		label = domain[:i]
	}
	label = strings.ToLower(label)
	label = strings.ReplaceAll(label, "-", " ")
	label = strings.ReplaceAll(label, "_", " ")
	return strings.TrimSpace(label)
}

// Similarity measures cross-script similarity between a company name and a
// domain label. Japanese names rarely share a script with their ASCII
// domains, so several renderings of the name are compared and the best
// score wins.
type Similarity struct{}

// NewSimilarity creates a Similarity measurer.
func NewSimilarity() *Similarity {
	return &Similarity{}
}

// Best returns the highest similarity in [0,100] across all renderings of
// the name and both fuzzy measures.
func (s *Similarity) Best(name, domainLabel string) float64 {
	if domainLabel == "" {
		return 0
	}

	best := 0
	for _, variant := range s.variants(name) {
		if variant == "" {
			continue
		}
		if r := fuzzy.WRatio(variant, domainLabel); r > best {
			best = r
		}
		if r := fuzzy.TokenSetRatio(variant, domainLabel); r > best {
			best = r
		}
	}
	return float64(best)
}

// variants returns the renderings of a name worth comparing: the normalized
// original, its romaji transliteration, and the romaji of any katakana runs
// alone. The katakana-run variant catches names like 株式会社バーバーボス
// whose kanji corporate wrapper drowns out the brand.
func (s *Similarity) variants(name string) []string {
	normalized := NormalizeName(name)
	out := []string{normalized}

	if romaji := strings.TrimSpace(kana.KanaToRomaji(normalized)); romaji != normalized {
		out = append(out, strings.ToLower(romaji))
	}

	if runs := katakanaRuns(normalized); runs != "" {
		romaji := strings.TrimSpace(kana.KanaToRomaji(runs))
		out = append(out, strings.ToLower(romaji))
	}

	return out
}

// katakanaRuns extracts contiguous katakana sequences, separated by spaces.
func katakanaRuns(s string) string {
	var b strings.Builder
	inRun := false
	for _, r := range s {
		if unicode.In(r, unicode.Katakana) || r == 'ー' {
			b.WriteRune(r)
			inRun = true
		} else if inRun {
			b.WriteByte(' ')
			inRun = false
		}
	}
	return strings.TrimSpace(b.String())
}
