package model

type CastVoteRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	Count     int    `json:"count"`
}

type CastVoteResponse struct {
	Project        Project `json:"project"`
	RemainingVotes int     `json:"remaining_votes"`
}

type GetRemainingVotesRequest struct {
	// Wallet defaults to the requester.
	Wallet string `form:"wallet"`
}

type GetRemainingVotesResponse struct {
	Wallet         string `json:"wallet"`
	BaseAllowance  int    `json:"base_allowance"`
	BonusVotes     int    `json:"bonus_votes"`
	Spent          int    `json:"spent"`
	RemainingVotes int    `json:"remaining_votes"`
}

type RecordMintRequest struct {
	NFTCount int `json:"nft_count"`
}

type RecordMintResponse struct {
	Winner WinningProject `json:"winner"`
}

type WebhookMintRequest struct {
	Wallet          string `json:"wallet" validate:"required"`
	NFTs            int    `json:"nfts"`
	TxHash          string `json:"tx_hash" validate:"required"`
	ProjectID       string `json:"project_id" validate:"required"`
	ContractAddress string `json:"contract_address"`
	BlockNumber     uint64 `json:"block_number"`
	Timestamp       int64  `json:"timestamp"`
}

type WebhookMintResponse struct {
	Wallet   string `json:"wallet"`
	NFTs     int    `json:"nfts"`
	XPEarned int64  `json:"xp_earned"`
	TxHash   string `json:"tx_hash"`
}
