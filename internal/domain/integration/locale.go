package integration

import (
	"strings"

	"github.com/erp/storesync/internal/domain/reference"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// ChannelLanguage is a remote language of a channel linked to a local language
type ChannelLanguage struct {
	RemoteID int64
	LocalID  uuid.UUID
	Code     string
}

// LocalizedText is a remote text value resolved to a local language
type LocalizedText struct {
	LanguageID   uuid.UUID
	LanguageCode string
	Value        string
}

// SelectPrimaryAndSecondary resolves locale variants against the channel's
// linked languages. The first variant with a linked language is the primary;
// every later one in a distinct language is a secondary. Variants in
// unlinked languages are dropped. ok is false when nothing matched.
func SelectPrimaryAndSecondary(variants []LocaleVariant, languages map[int64]ChannelLanguage) (primary LocalizedText, secondary []LocalizedText, ok bool) {
	seen := make(map[uuid.UUID]bool, len(variants))
	for _, v := range variants {
		lang, linked := languages[v.LanguageID]
		if !linked || seen[lang.LocalID] {
			continue
		}
		seen[lang.LocalID] = true
		text := LocalizedText{LanguageID: lang.LocalID, LanguageCode: lang.Code, Value: v.Value}
		if !ok {
			primary, ok = text, true
			continue
		}
		secondary = append(secondary, text)
	}
	return primary, secondary, ok
}

// ParseLocale parses remote ("en-us", "fr-FR") and local ("fr_FR") locale codes
func ParseLocale(code string) (language.Tag, bool) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return language.Und, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// IsEnglish reports whether a locale code is in the English language
func IsEnglish(code string) bool {
	tag, ok := ParseLocale(code)
	if !ok {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "en"
}

// MatchLanguage finds the local language for a remote locale tag.
//
// An exact tag match wins. A tag without a region then matches the local
// language in its most likely region (en -> en_US); finally a local language
// without a region matches any tag of the same base. Anything else has no
// local counterpart.
func MatchLanguage(tag string, languages []reference.Language) (*reference.Language, bool) {
	want, ok := ParseLocale(tag)
	if !ok {
		return nil, false
	}
	wantBase, _ := want.Base()
	wantRegion, regionConf := want.Region()

	type candidate struct {
		lang      *reference.Language
		hasRegion bool
		region    language.Region
	}
	var sameBase []candidate
	for i := range languages {
		have, ok := ParseLocale(languages[i].Code)
		if !ok {
			continue
		}
		if have.String() == want.String() {
			return &languages[i], true
		}
		haveBase, _ := have.Base()
		if haveBase != wantBase {
			continue
		}
		region, conf := have.Region()
		sameBase = append(sameBase, candidate{lang: &languages[i], hasRegion: conf == language.Exact, region: region})
	}

	if regionConf != language.Exact {
		for _, c := range sameBase {
			if c.hasRegion && c.region == wantRegion {
				return c.lang, true
			}
		}
	}
	for _, c := range sameBase {
		if !c.hasRegion {
			return c.lang, true
		}
	}
	return nil, false
}
