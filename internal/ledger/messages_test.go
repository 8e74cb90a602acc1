package ledger_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestMessage_Tones(t *testing.T) {
	tests := []struct {
		lang     domain.Language
		level    domain.SignalLevel
		contains string
	}{
		{domain.LanguageFilipino, domain.Signal1, "Dahan-dahan lang"},
		{domain.LanguageFilipino, domain.Signal2, "Dahan-dahan lang"},
		{domain.LanguageFilipino, domain.Signal3, "Manatili sa loob ng bahay"},
		{domain.LanguageFilipino, domain.Signal4, "Manatili sa loob ng bahay"},
		{domain.LanguageFilipino, domain.Signal5, "EVACUATE IF NECESSARY"},
		{domain.LanguageEnglish, domain.Signal1, "Take care"},
		{domain.LanguageEnglish, domain.Signal2, "Take care"},
		{domain.LanguageEnglish, domain.Signal3, "Stay indoors"},
		{domain.LanguageEnglish, domain.Signal4, "Stay indoors"},
		{domain.LanguageEnglish, domain.Signal5, "EVACUATE IF NECESSARY"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s signal %d", tt.lang, tt.level), func(t *testing.T) {
			msg := ledger.Message(tt.lang, tt.level, "Manila, Philippines")
			assert.Contains(t, msg, tt.contains)
			assert.Contains(t, msg, fmt.Sprintf("Signal #%d", tt.level))
			assert.Contains(t, msg, "Manila, Philippines")
		})
	}
}

func TestMessage_EveryLanguageLevelPairRenders(t *testing.T) {
	for _, lang := range []domain.Language{domain.LanguageFilipino, domain.LanguageEnglish} {
		for level := domain.Signal1; level <= domain.Signal5; level++ {
			msg := ledger.Message(lang, level, "Cebu City")
			assert.NotEmpty(t, msg)
			assert.False(t, strings.Contains(msg, "%!"), "formatting artifact in %q", msg)
		}
	}
}

func TestMessage_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	msg := ledger.Message("de", domain.Signal3, "Davao City")
	assert.Contains(t, msg, "Stay indoors")
}
