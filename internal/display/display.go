// Package display renders event dates for people. Its output is never parsed
// back; filtering and sorting always work on the stored strings.
package display

import (
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/nl"
	"golang.org/x/text/language"

	"github.com/julianstephens/clubdesk/internal/utils"
)

// RangeSeparator joins the two ends of a multi-day event.
const RangeSeparator = " — "

var translators = map[language.Base]func() locales.Translator{
	mustBase("en"): en.New,
	mustBase("de"): de.New,
	mustBase("fr"): fr.New,
	mustBase("nl"): nl.New,
}

var (
	supported = []language.Tag{language.English, language.German, language.French, language.Dutch}
	matcher   = language.NewMatcher(supported)
)

func mustBase(s string) language.Base {
	return language.MustParseBase(s)
}

// Formatter renders dates in one locale.
type Formatter struct {
	tag   language.Tag
	trans locales.Translator
}

// NewFormatter resolves locale (a BCP 47 tag such as "de-CH") to the closest
// supported language, falling back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		tag = language.English
	}
	matched, _, _ := matcher.Match(tag)
	base, _ := matched.Base()
	newTrans, ok := translators[base]
	if !ok {
		base = mustBase("en")
		newTrans = translators[base]
	}
	return &Formatter{tag: language.Make(base.String()), trans: newTrans()}
}

// Locale returns the language actually used.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// FormatDate renders a single date in long form and a range as two short
// dates. An empty date renders as an empty string.
func (f *Formatter) FormatDate(date string) string {
	if date == "" {
		return ""
	}
	start, end, isRange := utils.SplitDateRange(date)
	if isRange {
		return f.Short(start) + RangeSeparator + f.Short(end)
	}
	return f.Long(date)
}

// Long renders YYYY-MM-DD with weekday, day, month name and year.
func (f *Formatter) Long(date string) string {
	return f.trans.FmtDateFull(utils.ParseDateString(date))
}

// Short renders YYYY-MM-DD in the locale's numeric form.
func (f *Formatter) Short(date string) string {
	return f.trans.FmtDateShort(utils.ParseDateString(date))
}

// FormatWhen renders the date and, for single dates, the time.
func (f *Formatter) FormatWhen(date, timeStr string) string {
	out := f.FormatDate(date)
	if timeStr != "" && !utils.IsDateRange(date) {
		out += ", " + timeStr
	}
	return out
}

// FormatDate is a convenience wrapper for a one-off locale.
func FormatDate(date, locale string) string {
	return NewFormatter(locale).FormatDate(date)
}
