// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names the tables and columns used by hand-written SQL.

Repositories build their statements from these definitions so a column rename
is a one-line change.
*/
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	Email       string
	Password    string
	Nickname    string
	IsActive    string
	IsSuperuser string
	IsVerified  string
	LastLoginAt string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Email:       "email",
	Password:    "passwordhash",
	Nickname:    "nickname",
	IsActive:    "isactive",
	IsSuperuser: "issuperuser",
	IsVerified:  "isverified",
	LastLoginAt: "lastloginat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns the columns hydrated into a user entity, in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.Nickname, t.IsActive, t.IsSuperuser,
		t.IsVerified, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
