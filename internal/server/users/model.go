package users

const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// User is one identity record. Credential holds a bcrypt hash for accounts
// created through REGISTER; externally provisioned records may carry a
// plaintext credential instead (see Service.Authenticate).
type User struct {
	UserName   string
	Credential string
	Role       string
}
