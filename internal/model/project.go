package model

type SubmitProjectRequest struct {
	Name          string `json:"name" validate:"required,max=64"`
	Ticker        string `json:"ticker" validate:"required,max=16"`
	Logo          string `json:"logo" validate:"max=2048"`
	IsImageLogo   bool   `json:"is_image_logo"`
	URL           string `json:"url" validate:"required,url"`
	VaultedSupply int    `json:"vaulted_supply" validate:"min=0,max=30"`
}

type SubmitProjectResponse struct {
	Project Project `json:"project"`
}

type GetActiveProjectsRequest struct{}

type GetActiveProjectsResponse struct {
	Projects []Project `json:"projects"`
}

type GetSubmissionsRequest struct{}

type GetSubmissionsResponse struct {
	Projects []Project `json:"projects"`
}

type GetArchivedProjectsRequest struct {
	Offset int `form:"offset" validate:"min=0"`
	Limit  int `form:"limit" validate:"min=0"`
}

type GetArchivedProjectsResponse struct {
	Projects []Project `json:"projects"`
}

type GetCurrentWinnerRequest struct{}

type GetCurrentWinnerResponse struct {
	Winner *WinningProject `json:"winner"`
}

type GetProjectRequest struct {
	ID string `form:"id" validate:"required"`
}

type GetProjectResponse struct {
	Project Project `json:"project"`
}
