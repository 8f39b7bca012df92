package domain

// UserRole identifies what a user can do on the platform.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleProvider UserRole = "provider"
	RoleCustomer UserRole = "customer"
	RoleGuest    UserRole = "guest"
)

// UserProfile represents the signed-in user's profile.
type UserProfile struct {
	ID        string   `json:"id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	CreatedAt string   `json:"created_at"`
}
