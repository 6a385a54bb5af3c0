// internal/models/user.go
package models

import (
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// User is the identity the rest of the system references by uid. Everything
// the grid core needs from it is the stable id plus a display name.
type User struct {
	BaseModel
	Username     string         `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"`
	UserType     UserType       `json:"user_type" gorm:"type:varchar(20);default:'member'"`
	Status       UserStatus     `json:"status" gorm:"type:varchar(20);default:'active'"`
	Providers    pq.StringArray `json:"providers" gorm:"type:text[]"`
	ProfileData  JSONB          `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time     `json:"last_login_at"`

	// Relationships
	Receipts []PurchaseReceipt `json:"receipts,omitempty" gorm:"foreignKey:BuyerID"`
}

// DisplayName is what other users see on cells this user owns.
func (u *User) DisplayName() string {
	return u.Username
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
