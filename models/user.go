package models

// UserInfo is the authenticated user's own profile.
type UserInfo struct {
	PersonProfile
	Roles   []string `json:"roles"`
	IsStaff bool     `json:"is_staff"`
}
