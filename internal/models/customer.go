// internal/models/customer.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type Customer struct {
	BaseModel
	FullName     string         `json:"full_name" gorm:"size:120"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255"`
	Phone        string         `json:"phone" gorm:"size:40"`
	Address      string         `json:"address" gorm:"size:250"`
	Role         CustomerRole   `json:"role" gorm:"type:varchar(20);default:'customer'"`
	Status       CustomerStatus `json:"status" gorm:"type:varchar(20);default:'active'"`

	// Relationships
	Carts     []Cart     `json:"carts,omitempty" gorm:"foreignKey:CustomerID"`
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:CustomerID"`
}

func (c *Customer) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hashedPassword)
	return nil
}

func (c *Customer) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
}

type Employee struct {
	BaseModel
	FullName string `json:"full_name" gorm:"size:120;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
}
