package resolver

import (
	"path"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/codegauge/internal/types"
)

// Suggest returns the analyzed file whose name is closest to an unresolved
// target, or "" when nothing is close enough to be a plausible typo
func (r *Resolver) Suggest(target, importer string, lang types.Language) string {
	want := suggestionKey(target)
	if want == "" {
		return ""
	}
	limit := len(want) / 3
	if limit < 2 {
		limit = 2
	}

	candidates := r.filesOfLang(lang)
	if len(candidates) == 0 {
		candidates = r.files
	}

	best, bestDistance := "", limit+1
	for _, f := range candidates {
		if f == importer {
			continue
		}
		distance := edlib.LevenshteinDistance(want, stemOf(f))
		if distance < bestDistance || (distance == bestDistance && best != "" && closer(importer, f, best)) {
			best, bestDistance = f, distance
		}
	}
	return best
}

// suggestionKey reduces a target to the name most likely to match a file stem
func suggestionKey(target string) string {
	t := strings.Trim(target, `<>"' `)
	t = strings.TrimLeft(t, "./")
	for _, sep := range []string{"::", `\`} {
		if i := strings.LastIndex(t, sep); i >= 0 {
			t = t[i+len(sep):]
		}
	}
	t = path.Base(t)
	if ext := path.Ext(t); ext != "" && types.LanguageForPath(t) != types.LangUnknown {
		t = strings.TrimSuffix(t, ext)
	} else if i := strings.LastIndex(t, "."); i >= 0 && i < len(t)-1 {
		t = t[i+1:]
	}
	return t
}
