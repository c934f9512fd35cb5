package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleFarmer   Role = "farmer"
	RoleAdmin    Role = "admin"
)

// User is the slice of the account record this service reads: contact data
// for payment prefill and bank details for seller payouts.
type User struct {
	ID                    string `json:"id" gorm:"primaryKey;size:36"`
	Username              string `json:"username" gorm:"uniqueIndex;size:64"`
	Email                 string `json:"email" gorm:"uniqueIndex;size:128"`
	Role                  Role   `json:"role" gorm:"size:16;not null;default:'customer'"`
	ContactNumber         string `json:"contactNumber,omitempty"`
	BankAccountNumber     string `json:"-"`
	IFSCCode              string `json:"-"`
	BankAccountHolderName string `json:"-"`
}

func (u *User) HasBankAccount() bool {
	return u.BankAccountNumber != "" && u.IFSCCode != ""
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
