package models

type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Sex      Sex    `json:"sex"`
	Password string `json:"-"` // bcrypt hash
}

// PublicUser is the part of an account visible to other users.
type PublicUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Sex      Sex    `json:"sex"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Sex: u.Sex}
}
