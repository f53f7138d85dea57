package domain

import "time"

// Session represents one active login. Its TokenHash always holds the hash
// of the single currently-valid refresh token; rotation overwrites it in
// place, never appends.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Never serialize
	IPAddress string    `json:"ip_address,omitempty"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenPair is returned after successful login or refresh. The refresh token
// is persisted only as a hash inside its owning Session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims represents the signed JWT payload shared by access and refresh
// tokens. RefreshToken carries the raw presented token and is populated only
// while a refresh token is being validated against the stored hash.
type TokenClaims struct {
	UserID       string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SignupRequest carries the fields required to create an account
type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest represents a login attempt. IPAddress and Device are filled
// in by the transport layer from the client connection.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
	Device    string `json:"-"`
}

// RefreshRequest represents a token refresh attempt. All three fields come
// from the verified refresh token, not from the request body.
type RefreshRequest struct {
	Username     string `json:"username"`
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}
