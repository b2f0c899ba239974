package model

// TokenResponse is returned by login and by the last signup step. There is no
// refresh token, clients log in again once ExpiresIn runs out.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	TokenType   string `json:"tokenType"`
}
