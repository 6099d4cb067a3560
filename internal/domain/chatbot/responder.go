package chatbot

import (
	"strings"

	"github.com/yanqian/skinscan/pkg/util"
)

// Source names the branch of the response chain that produced a reply.
type Source string

const (
	SourceGreeting    Source = "greeting"
	SourceAppIdentity Source = "app_identity"
	SourceFAQ         Source = "faq"
	SourceNavigation  Source = "navigation"
	SourceFallback    Source = "fallback"
)

const (
	greetingReply    = "Hello! How can I help you with skin cancer information or using the SkinScan app today?"
	howItWorksReply  = "SkinScan works by analyzing images of skin lesions using AI. Upload an image in the Detection page to get a result."
	accuracyReply    = "SkinScan achieves around 85-90% accuracy on validation datasets, but should be used as a supportive tool for doctors."
	noResponsesReply = "I can help answer general questions about skin cancer and skin health, but remember that I'm not a replacement for professional medical advice."
)

var (
	greetings        = map[string]struct{}{"hello": {}, "hi": {}, "hey": {}, "greetings": {}}
	appIdentityTerms = []string{"skinscan", "app", "application"}
	usageTerms       = []string{"use", "work"}
)

// RandomSource picks the general fallback sentence.
type RandomSource interface {
	Intn(n int) int
}

// Reply describes how an utterance was answered.
type Reply struct {
	Text            string
	Source          Source
	Normalized      string
	MatchedQuestion string
	Intent          Intent
	Score           float64
}

// Responder answers free-form questions from a fixed catalog.
type Responder struct {
	catalog *Catalog
	matcher *Matcher
	rng     RandomSource
}

// NewResponder wires a responder around an immutable catalog. A nil catalog
// means the default one; a nil rng gets a time seeded source.
func NewResponder(catalog *Catalog, rng RandomSource) *Responder {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if rng == nil {
		rng = util.NewLockedRand(0)
	}
	return &Responder{
		catalog: catalog,
		matcher: NewMatcher(catalog),
		rng:     rng,
	}
}

// Respond returns the reply text for an utterance. It never fails.
func (r *Responder) Respond(utterance string) string {
	return r.Resolve(utterance).Text
}

// Resolve runs the full response chain and reports which branch answered.
func (r *Responder) Resolve(utterance string) Reply {
	normalized := Normalize(utterance)

	if _, ok := greetings[normalized]; ok {
		return Reply{Text: greetingReply, Source: SourceGreeting, Normalized: normalized}
	}

	if containsAny(normalized, appIdentityTerms) {
		if strings.Contains(normalized, "how") && containsAny(normalized, usageTerms) {
			return Reply{Text: howItWorksReply, Source: SourceAppIdentity, Normalized: normalized}
		}
		if strings.Contains(normalized, "accurate") {
			return Reply{Text: accuracyReply, Source: SourceAppIdentity, Normalized: normalized}
		}
	}

	if match, ok := r.matcher.Best(normalized); ok {
		return Reply{
			Text:            match.Entry.Answer,
			Source:          SourceFAQ,
			Normalized:      normalized,
			MatchedQuestion: match.Entry.Question,
			Score:           match.Score,
		}
	}

	if intent, ok := resolveIntent(normalized); ok {
		return Reply{
			Text:       navigationHelp(r.catalog, intent),
			Source:     SourceNavigation,
			Normalized: normalized,
			Intent:     intent,
		}
	}

	return Reply{Text: r.fallback(), Source: SourceFallback, Normalized: normalized}
}

func (r *Responder) fallback() string {
	responses := r.catalog.GeneralResponses
	if len(responses) == 0 {
		return noResponsesReply
	}
	return responses[r.rng.Intn(len(responses))]
}
