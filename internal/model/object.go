package model

type AccessToken struct {
	Wallet string `json:"wallet"`
}

type Project struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	Name          string `json:"name"`
	Ticker        string `json:"ticker"`
	Logo          string `json:"logo"`
	IsImageLogo   bool   `json:"is_image_logo"`
	URL           string `json:"url"`
	BuilderWallet string `json:"builder_wallet,omitempty"`
	VaultedSupply int    `json:"vaulted_supply"`

	Phase         string `json:"phase"`
	Votes         int    `json:"votes"`
	DaysActive    int    `json:"days_active"`
	PriorityScore int    `json:"priority_score"`
}

type WinningProject struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Ticker        string `json:"ticker"`
	Logo          string `json:"logo"`
	IsImageLogo   bool   `json:"is_image_logo"`
	URL           string `json:"url"`
	VaultedSupply int    `json:"vaulted_supply"`
	PresaleMints  int    `json:"presale_mints"`
	EndsAt        string `json:"ends_at"`
}

type Tier struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	MinBalance uint64 `json:"min_balance"`
	BonusVotes int    `json:"bonus_votes"`
}

type XPAccount struct {
	Wallet            string `json:"wallet"`
	VoteXP            int64  `json:"vote_xp"`
	PresaleXP         int64  `json:"presale_xp"`
	BuilderXP         int64  `json:"builder_xp"`
	TotalXP           int64  `json:"total_xp"`
	VotesCast         int64  `json:"votes_cast"`
	MintsContributed  int64  `json:"mints_contributed"`
	ProjectsSubmitted int64  `json:"projects_submitted"`
	CreatedAt         string `json:"created_at"`
}

type XPLog struct {
	ID        int64  `json:"id,string"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Wallet    string `json:"wallet"`
	VoteXP    int64  `json:"vote_xp"`
	PresaleXP int64  `json:"presale_xp"`
	BuilderXP int64  `json:"builder_xp"`
	TotalXP   int64  `json:"total_xp"`
}

type WatcherStats struct {
	IsRunning          bool   `json:"is_running"`
	EventsProcessed    int64  `json:"events_processed"`
	Errors             int64  `json:"errors"`
	LastProcessedBlock uint64 `json:"last_processed_block"`
	LastEventTime      string `json:"last_event_time,omitempty"`
}

type TrackedContract struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	ProjectID  string `json:"project_id"`
	StartBlock uint64 `json:"start_block"`
	IsActive   bool   `json:"is_active"`
}
