package calls

import "strings"

// Classification is the coarse reading of a call transcript.
type Classification struct {
	Sentiment Sentiment
	Outcome   Outcome
}

var (
	interestedPhrases    = []string{"interested", "love to", "send me"}
	notInterestedPhrases = []string{"not interested", "no thanks", "don't need"}
	callbackPhrases      = []string{"call back", "later", "busy"}
	voicemailPhrases     = []string{"voicemail", "leave a message"}
)

// ClassifyTranscript matches keyword groups against the lower-cased
// transcript; the first group with a hit wins, in this order: interested,
// not interested, callback, voicemail. "interested" inside "not interested"
// does not count as an interested hit. ok is false when nothing matches.
func ClassifyTranscript(transcript string) (Classification, bool) {
	text := strings.ToLower(strings.ReplaceAll(transcript, "’", "'"))
	if strings.TrimSpace(text) == "" {
		return Classification{}, false
	}

	if containsAny(strings.ReplaceAll(text, "not interested", " "), interestedPhrases) {
		return Classification{Sentiment: SentimentPositive, Outcome: OutcomeInterested}, true
	}
	if containsAny(text, notInterestedPhrases) {
		return Classification{Sentiment: SentimentNegative, Outcome: OutcomeNotInterested}, true
	}
	if containsAny(text, callbackPhrases) {
		return Classification{Sentiment: SentimentNeutral, Outcome: OutcomeCallback}, true
	}
	if containsAny(text, voicemailPhrases) {
		return Classification{Sentiment: SentimentNeutral, Outcome: OutcomeVoicemail}, true
	}
	return Classification{}, false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
