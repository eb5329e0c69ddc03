package api

// Role values returned by the drop API in the user record.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is the account record returned by the sign-in endpoints and persisted
// alongside the tokens. The API owns this shape; the client stores and
// replays it without patching individual fields.
type User struct {
	ID    string `json:"id,omitempty"`    // Unique identifier for the account
	Name  string `json:"name,omitempty"`  // Display name
	Email string `json:"email,omitempty"` // Email address used to sign in
	Role  string `json:"role,omitempty"`  // Either "admin" or "client"
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Product is a storefront catalogue entry.
type Product struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Stock       int     `json:"stock,omitempty"`
}

// NewProduct is the payload for creating a catalogue entry. All fields are
// sent as provided; the API assigns the ID.
type NewProduct struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Stock       int     `json:"stock"`
}

// ProductUpdate is a partial update. Nil fields are omitted from the request
// body and left untouched by the API.
type ProductUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}
