package domain

type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleFaculty Role = "faculty"
)

// Identity is the authenticated caller as provided by the external auth
// system. It is attached to every request and socket after token
// verification; this core never issues or refreshes tokens.
type Identity struct {
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
	CollegeID string `json:"college_id"`
}

type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}
