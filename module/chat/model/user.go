package model

import "time"

const UserTableName = "users"

// User roles as the wider platform writes them. The messaging core only
// flips Online/LastSeen; everything else is a read-only snapshot here.
const (
	RoleUser      = "user"
	RoleTradesman = "tradesman"
	RoleAdmin     = "admin"
	RoleSupplier  = "supplier"
)

type User struct {
	ID        string    `bson:"_id" json:"id"`
	FirstName string    `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName  string    `bson:"last_name,omitempty" json:"lastName,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role      string    `bson:"role,omitempty" json:"role,omitempty"`
	Online    bool      `bson:"online" json:"online"`
	LastSeen  time.Time `bson:"last_seen" json:"lastSeen"`
}

func (*User) TableName() string { return UserTableName }
