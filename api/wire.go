package api

// SignInRequest is the body for both the customer and admin sign-in
// endpoints. The API names the email field "username".
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned by POST /user/signin.
type SignInResponse struct {
	// User is the signed-in account record. Persisted verbatim so a later
	// restart can restore the session without a network call.
	User *User `json:"user,omitempty"`

	// AccessToken is the JWT presented as "Authorization: Bearer <token>"
	// on authenticated API calls. Short-lived; its lifetime is carried in
	// the token's own "exp" claim.
	AccessToken string `json:"accessToken,omitempty"`

	// RefreshToken is an opaque credential exchanged at /user/refresh-token
	// for a fresh token pair once the access token expires.
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AdminSignInResponse is returned by POST /user/admin-login. Identical to
// SignInResponse except the account record is keyed "admin".
type AdminSignInResponse struct {
	Admin        *User  `json:"admin,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// RefreshRequest is the body for POST /user/refresh-token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the rotated token pair. Both values replace the
// stored ones wholesale.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ProductsResponse is returned by GET /product/all.
type ProductsResponse struct {
	Products []Product `json:"products,omitempty"`
}

// ProductResponse wraps a single catalogue entry, as returned by the
// product read, add and update endpoints.
type ProductResponse struct {
	Product *Product `json:"product,omitempty"`
}

// ErrorResponse is the body the API sends on failed requests. Message is
// optional; callers fall back to an operation-specific default when absent.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
}
