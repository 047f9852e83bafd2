package intake

import (
	"regexp"
	"strings"

	"underwriting-workers/internal/common/pii"
	"underwriting-workers/internal/underwriting/policy"
)

const redactedPhrase = "[redacted]"

// outputGuard cleans every outbound message: blocked phrases first, then the
// offer disclaimer, then PII masking.
type outputGuard struct {
	phrases    []*regexp.Regexp
	disclaimer string
}

func newOutputGuard(p policy.Policy) *outputGuard {
	g := &outputGuard{disclaimer: p.OfferDisclaimer}
	for _, phrase := range p.BlockedPhrases {
		if phrase == "" {
			continue
		}
		g.phrases = append(g.phrases, regexp.MustCompile("(?i)"+regexp.QuoteMeta(phrase)))
	}
	return g
}

func (g *outputGuard) apply(msg string, hasOffer bool) string {
	for _, re := range g.phrases {
		msg = re.ReplaceAllString(msg, redactedPhrase)
	}
	if hasOffer && g.disclaimer != "" {
		lower := strings.ToLower(msg)
		if !strings.Contains(lower, "preliminary") && !strings.Contains(lower, "indicative") {
			msg += "\n\n" + g.disclaimer
		}
	}
	return pii.Redact(msg)
}
