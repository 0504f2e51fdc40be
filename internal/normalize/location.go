package normalize

import (
	_ "embed"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// LocationKind selects which dictionary NormalizeLocation consults.
type LocationKind string

const (
	LocationCity    LocationKind = "city"
	LocationState   LocationKind = "state"
	LocationCountry LocationKind = "country"
)

//go:embed locations.yaml
var locationsYAML []byte

type locationTables struct {
	Countries map[string]string `yaml:"countries"`
	States    map[string]string `yaml:"states"`
	Cities    map[string]string `yaml:"cities"`
}

var (
	locationsOnce sync.Once
	locations     locationTables

	leadingArticleRe = regexp.MustCompile(`^(the|het|de)\s+`)
	locationJunkRe   = regexp.MustCompile(`[^\p{L}\p{M}\s'-]`)
)

// Dutch linking words stay lower-case inside city names ("Alphen aan den Rijn").
var cityLinkingWords = map[string]bool{
	"aan":   true,
	"op":    true,
	"onder": true,
	"bij":   true,
}

func loadLocations() {
	if err := yaml.Unmarshal(locationsYAML, &locations); err != nil {
		zap.L().Error("normalize: parse location tables", zap.Error(err))
	}
}

func (t locationTables) table(kind LocationKind) map[string]string {
	switch kind {
	case LocationCountry:
		return t.Countries
	case LocationState:
		return t.States
	default:
		return t.Cities
	}
}

// locationKey reduces a location to its dictionary lookup form.
func locationKey(s string) string {
	s = cases.Lower(language.Dutch).String(strings.TrimSpace(s))
	s = leadingArticleRe.ReplaceAllString(s, "")
	s = locationJunkRe.ReplaceAllString(s, "")
	return collapseSpaces(s)
}

// NormalizeLocation maps a city, state, or country to its Dutch display name.
// Unknown names are title-cased word by word.
func NormalizeLocation(v any, kind LocationKind) string {
	s := SanitizeString(v)
	if s == "" {
		return ""
	}
	locationsOnce.Do(loadLocations)

	key := locationKey(s)
	if key == "" {
		return ""
	}
	if canonical, ok := locations.table(kind)[key]; ok {
		return canonical
	}

	title := cases.Title(language.Dutch)
	words := strings.Fields(key)
	for i, w := range words {
		if kind == LocationCity && i > 0 && cityLinkingWords[w] {
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}
