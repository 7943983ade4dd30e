package employees

import (
	"time"

	"peopledesk/internal/domain/onboarding"
)

// Summary is one dashboard row.
type Summary struct {
	ID             string    `json:"id"`
	EmployeeNumber string    `json:"employeeNumber"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Profile is the full aggregate the profile viewer renders.
type Profile struct {
	ID         string                       `json:"id"`
	Status     string                       `json:"status"`
	Personal   onboarding.PersonalDetails   `json:"personal"`
	Education  *onboarding.EducationDetails `json:"education,omitempty"`
	Experience []onboarding.ExperienceEntry `json:"experience,omitempty"`
	Bank       *onboarding.BankDetails      `json:"bank,omitempty"`
	CreatedAt  time.Time                    `json:"createdAt"`
	UpdatedAt  time.Time                    `json:"updatedAt"`
}
