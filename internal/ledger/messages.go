package ledger

import (
	"fmt"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

// Alert message templates, keyed by language and tone. Levels 1-2 share the
// caution tone, 3-4 the urgent stay-indoors tone, and 5 the evacuation
// tone. Each template receives the signal number and the location label.
var messageTemplates = map[domain.Language][3]string{
	domain.LanguageFilipino: {
		"⚠️ Signal #%d sa %s. Dahan-dahan lang, ingat!",
		"🚨 Signal #%d sa %s! Manatili sa loob ng bahay!",
		"🚨🚨 Signal #%d sa %s! EVACUATE IF NECESSARY!",
	},
	domain.LanguageEnglish: {
		"⚠️ Signal #%d in %s. Take care!",
		"🚨 Signal #%d in %s! Stay indoors!",
		"🚨🚨 Signal #%d in %s! EVACUATE IF NECESSARY!",
	},
}

// Message renders the localized alert text for a signal level at a
// location. Unknown languages fall back to English. Levels outside 1-5
// render with the caution tone; callers never pass them because signal 0
// raises no alert.
func Message(lang domain.Language, level domain.SignalLevel, locationLabel string) string {
	templates, ok := messageTemplates[lang]
	if !ok {
		templates = messageTemplates[domain.LanguageEnglish]
	}

	tone := 0
	switch {
	case level >= domain.Signal5:
		tone = 2
	case level >= domain.Signal3:
		tone = 1
	}

	return fmt.Sprintf(templates[tone], int(level), locationLabel)
}
