package request

type GrantMember struct {
	// Wallet address receiving decrypt rights
	Address string `json:"address" binding:"required"`
}
