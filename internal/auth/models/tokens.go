package models

// TokenPair is returned by register and login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResult bundles the account with freshly issued tokens.
type AuthResult struct {
	User   *User
	Tokens TokenPair
}

// Registration is the validated input for creating an account.
type Registration struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
	Role      string
}
