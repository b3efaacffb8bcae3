package entity

import (
	"time"
)

// MinDriverAge is the minimum age, in years, to rent a vehicle.
const MinDriverAge = 18

type Customer struct {
	Base
	FirstName     string     `db:"first_name"`
	LastName      string     `db:"last_name"`
	Email         string     `db:"email"`
	PhoneNumber   *string    `db:"phone_number"`
	LicenseNumber *string    `db:"license_number"`
	DateOfBirth   *time.Time `db:"date_of_birth"`
	IsActive      bool       `db:"is_active"`
	IsSuspended   bool       `db:"is_suspended"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// IsEligible reports whether the customer may book a vehicle today.
func (c *Customer) IsEligible() bool {
	return c.IsEligibleAt(time.Now())
}

// IsEligibleAt requires an active, non-suspended, non-deleted customer with a
// driver's license who is at least MinDriverAge years old at t.
func (c *Customer) IsEligibleAt(t time.Time) bool {
	if !c.IsActive || c.IsSuspended || c.DeletedAt != nil {
		return false
	}
	if c.LicenseNumber == nil || *c.LicenseNumber == "" {
		return false
	}
	if c.DateOfBirth == nil {
		return false
	}
	return !c.DateOfBirth.AddDate(MinDriverAge, 0, 0).After(t)
}
