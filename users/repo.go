package users

import "time"

type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	GetByActivationToken(token string) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetActive(email string, active bool) error
	SetLastLogin(email string, at time.Time) error
}
