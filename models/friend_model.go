package models

// Roles a friend can hold. Registration always yields RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Friend is a registered user. PasswordHash never leaves the service layer:
// it is cleared by Redacted and excluded from JSON.
type Friend struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	FirstName    string `json:"firstName" bson:"firstName"`
	LastName     string `json:"lastName" bson:"lastName"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"password"`
	Role         string `json:"role" bson:"role"`
}

// Redacted returns a copy without the password digest.
func (f Friend) Redacted() Friend {
	f.PasswordHash = ""
	return f
}

// DisplayName is "first last".
func (f Friend) DisplayName() string {
	return f.FirstName + " " + f.LastName
}

// DTO is the public projection used by list and lookup endpoints.
func (f Friend) DTO() FriendDTO {
	return FriendDTO{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email}
}

type FriendDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// RegisterInput is the creation schema. A role is never accepted from clients.
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4,max=30"`
}

// FriendPatch is the edit schema. Each optional field is applied only when
// present; Email identifies the record and is never changed.
type FriendPatch struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=2,max=50"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=4,max=30"`
}

// Empty reports whether the patch carries no field to change.
func (p FriendPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Password == nil
}

// Apply merges the present fields into f. Password is expected to be a digest
// by the time a patch reaches a repository.
func (p FriendPatch) Apply(f *Friend) bool {
	changed := false
	if p.FirstName != nil && *p.FirstName != f.FirstName {
		f.FirstName = *p.FirstName
		changed = true
	}
	if p.LastName != nil && *p.LastName != f.LastName {
		f.LastName = *p.LastName
		changed = true
	}
	if p.Password != nil && *p.Password != f.PasswordHash {
		f.PasswordHash = *p.Password
		changed = true
	}
	return changed
}

// UpdateResult is the outcome of an edit: the stored record after the update
// and how many documents actually changed.
type UpdateResult struct {
	Friend   Friend `json:"user"`
	Modified int64  `json:"modified"`
}
