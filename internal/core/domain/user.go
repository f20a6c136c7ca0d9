package domain

// User is an operator of the ledger console. The user id is the actor recorded
// on every mutation.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	PasswordHash string `json:"-"`
	AuditFields
}
