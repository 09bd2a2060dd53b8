package users

import "time"

// User is a commerce-host member with a credit balance.
type User struct {
	ID                    string    `json:"id"`
	WhopUserID            string    `json:"whopUserId"`
	Email                 string    `json:"email,omitempty"`
	Username              string    `json:"username,omitempty"`
	SubscriptionTier      string    `json:"subscriptionTier"`
	CreditsRemaining      int       `json:"creditsRemaining"`
	TotalCreditsPurchased int       `json:"totalCreditsPurchased"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Identity is what the commerce host tells us about the caller.
type Identity struct {
	WhopUserID string
	Email      string
	Username   string
}
