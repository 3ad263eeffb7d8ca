package model

type GetNonceRequest struct {
	Wallet string `form:"wallet" validate:"required"`
}

type GetNonceResponse struct {
	Wallet  string `json:"wallet"`
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

type VerifyWalletRequest struct {
	Wallet    string `json:"wallet" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyWalletResponse struct {
	Wallet      string `json:"wallet"`
	AccessToken string `json:"access_token"`
}

func (r VerifyWalletResponse) AccessTokenInfo() string {
	return r.AccessToken
}
