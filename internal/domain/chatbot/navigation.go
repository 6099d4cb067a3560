package chatbot

const defaultNavigationHelp = "Use the navigation menu to explore the app."

type intentKeywords struct {
	intent   Intent
	keywords []string
}

// navigationIntents is checked in order; the first hit wins.
var navigationIntents = []intentKeywords{
	{intent: IntentDetection, keywords: []string{"detection", "analyze", "scan", "upload", "image", "photo"}},
	{intent: IntentPatientInfo, keywords: []string{"patient", "information", "profile", "register"}},
	{intent: IntentHistory, keywords: []string{"history", "previous", "past", "record"}},
}

// resolveIntent reports the first navigation intent mentioned in the query.
func resolveIntent(normalizedQuery string) (Intent, bool) {
	for _, candidate := range navigationIntents {
		if containsAny(normalizedQuery, candidate.keywords) {
			return candidate.intent, true
		}
	}
	return "", false
}

func navigationHelp(catalog *Catalog, intent Intent) string {
	if text, ok := catalog.NavigationHelp[intent]; ok && text != "" {
		return text
	}
	return defaultNavigationHelp
}
