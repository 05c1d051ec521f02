package localize

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	locale "github.com/Xuanwo/go-locale"
)

type AssetLoader func(path string) ([]byte, error)

type Strings map[string]string

type StringsSet map[string]Strings

const fallbackLang = "en"

type Localizer struct {
	loadAsset  AssetLoader
	lang       string
	stringsSet StringsSet
}

func NewLocalizer(loadAsset AssetLoader) (*Localizer, error) {
	l := &Localizer{
		loadAsset:  loadAsset,
		lang:       fallbackLang,
		stringsSet: make(StringsSet),
	}
	err := l.LoadLocale(fallbackLang)
	if err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Localizer) Lang() string {
	return l.lang
}

// SetLang switches language, loading its strings if needed. Tries
// the full locale first ("fr_CA"), then the bare language ("fr").
// Returns false if neither could be loaded, in which case the
// current language is kept.
func (l *Localizer) SetLang(lang string) bool {
	for _, candidate := range candidates(lang) {
		if _, ok := l.stringsSet[candidate]; !ok {
			if err := l.LoadLocale(candidate); err != nil {
				continue
			}
		}

		log.Println("Switching to lang", candidate)
		l.lang = candidate
		return true
	}
	return false
}

// DetectLang asks the OS what language the user speaks and switches
// to it if we have strings for it.
func (l *Localizer) DetectLang() {
	tag, err := locale.Detect()
	if err != nil {
		log.Printf("Could not detect system locale: %v", err)
		return
	}

	if !l.SetLang(tag.String()) {
		log.Printf("No strings for system locale (%s), staying on %s", tag, l.lang)
	}
}

func candidates(lang string) []string {
	lang = strings.Replace(strings.TrimSpace(lang), "-", "_", -1)
	if lang == "" {
		return nil
	}

	res := []string{lang}
	if i := strings.Index(lang, "_"); i > 0 {
		res = append(res, lang[:i])
	}
	return res
}

func (l *Localizer) LoadLocale(locale string) error {
	locale = strings.Replace(locale, "-", "_", -1)

	assetPath := fmt.Sprintf("data/locales/%s.json", locale)
	log.Println("Trying to load locale", locale)

	localeBytes, err := l.loadAsset(assetPath)
	if err != nil {
		log.Println("While looking for locale file", locale, err.Error())
		return err
	}

	strings := Strings{}
	err = json.Unmarshal(localeBytes, &strings)
	if err != nil {
		log.Println("While parsing locale file", locale, err.Error())
		return err
	}

	l.stringsSet[locale] = strings

	return nil
}

type Replacements map[string]string

func (l *Localizer) T(key string, args ...Replacements) string {
	for _, lang := range []string{l.lang, fallbackLang} {
		ss := l.stringsSet[lang]
		rule, ok := ss[key]
		if !ok {
			continue
		}

		result := rule
		if len(args) > 0 {
			for k, v := range args[0] {
				result = strings.Replace(result, "{{"+k+"}}", v, -1)
			}
		}

		return result
	}

	return key
}
