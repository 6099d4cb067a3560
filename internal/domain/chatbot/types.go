package chatbot

// Request is a single chat message from the user.
type Request struct {
	Message string `json:"message"`
}

// Response is returned to the chat widget.
type Response struct {
	Message         string  `json:"message"`
	Reply           string  `json:"reply"`
	Source          Source  `json:"source"`
	MatchedQuestion string  `json:"matchedQuestion,omitempty"`
	Intent          Intent  `json:"intent,omitempty"`
	Score           float64 `json:"score,omitempty"`
}

// TrendingQuery represents a frequently asked question.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Config holds runtime knobs for the chat service.
type Config struct {
	TopTrending int
}
