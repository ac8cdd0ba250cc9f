package entity

// Summary is the record persisted once at the end of every run
type Summary struct {
	RunID            string   `json:"run_id"`
	Timestamp        string   `json:"timestamp"`
	TotalProcessed   int64    `json:"total_processed"`
	AvailableFound   int64    `json:"available_found"`
	TakenFound       int64    `json:"taken_found"`
	OnAuctionFound   int64    `json:"on_auction_found"`
	UnavailableFound int64    `json:"unavailable_found"`
	Errors           int64    `json:"errors"`
	ElapsedSeconds   float64  `json:"elapsed_seconds"`
	RatePerMinute    float64  `json:"rate_per_minute"`
	Candidates       int      `json:"candidates"`
	Interrupted      bool     `json:"interrupted"`
	Sources          []string `json:"sources_processed"`
}
