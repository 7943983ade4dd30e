package onboarding

import (
	"regexp"
	"strings"
)

var (
	aadhaarPattern = regexp.MustCompile(`^[0-9]{12}$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	esicPattern    = regexp.MustCompile(`^[0-9]{17}$`)
	uanPattern     = regexp.MustCompile(`^[0-9]{12}$`)
)

// ValidateSection runs the section-specific validator and returns the first
// unmet condition as a *ValidationError.
func ValidateSection(payload SectionPayload) error {
	switch p := payload.(type) {
	case *PersonalDetails:
		return ValidatePersonal(p)
	case *EducationDetails:
		return ValidateEducation(p)
	case *ExperienceDetails:
		return ValidateExperience(p)
	case *BankDetails:
		return ValidateBank(p)
	}
	return ErrUnknownSection
}

// ValidatePersonal checks the personal section. Entirely blank emergency
// contact and family member rows are pruned before the completeness checks
// run, so trailing empty form rows never fail validation on their own.
func ValidatePersonal(p *PersonalDetails) error {
	required := []struct {
		field string
		value string
	}{
		{"employeeId", p.EmployeeID},
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"dateOfBirth", p.DateOfBirth},
		{"gender", p.Gender},
		{"bloodGroup", p.BloodGroup},
		{"maritalStatus", p.MaritalStatus},
		{"aadhaarNumber", p.AadhaarNumber},
		{"panNumber", p.PANNumber},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "is required"}
		}
	}

	if !aadhaarPattern.MatchString(p.AadhaarNumber) {
		return &ValidationError{Field: "aadhaarNumber", Reason: "must be exactly 12 digits"}
	}
	if !panPattern.MatchString(strings.ToUpper(p.PANNumber)) {
		return &ValidationError{Field: "panNumber", Reason: "must be 5 letters, 4 digits and 1 letter"}
	}
	if p.ESICNumber != "" && !esicPattern.MatchString(p.ESICNumber) {
		return &ValidationError{Field: "esicNumber", Reason: "must be exactly 17 digits"}
	}
	if p.UANNumber != "" && !uanPattern.MatchString(p.UANNumber) {
		return &ValidationError{Field: "uanNumber", Reason: "must be exactly 12 digits"}
	}

	addressRequired := []struct {
		field string
		value string
	}{
		{"presentAddress.addressLine1", p.PresentAddress.AddressLine1},
		{"presentAddress.country", p.PresentAddress.Country},
		{"presentAddress.state", p.PresentAddress.State},
		{"presentAddress.city", p.PresentAddress.City},
		{"presentAddress.zipCode", p.PresentAddress.ZipCode},
	}
	for _, f := range addressRequired {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "is required"}
		}
	}

	p.EmergencyContacts = pruneContacts(p.EmergencyContacts)
	p.FamilyMembers = pruneFamilyMembers(p.FamilyMembers)

	if !anyCompleteContact(p.EmergencyContacts) {
		return &ValidationError{Field: "emergencyContacts", Reason: "at least one complete emergency contact is required"}
	}
	if !anyCompleteFamilyMember(p.FamilyMembers) {
		return &ValidationError{Field: "familyMembers", Reason: "at least one complete family member is required"}
	}
	return nil
}

func ValidateEducation(e *EducationDetails) error {
	if strings.TrimSpace(e.SSCDocument) == "" {
		return &ValidationError{Field: "sscDocument", Reason: "is required"}
	}
	if strings.TrimSpace(e.HSCDocument) == "" {
		return &ValidationError{Field: "hscDocument", Reason: "is required"}
	}
	if strings.TrimSpace(e.DegreeDocument) == "" {
		return &ValidationError{Field: "degreeDocument", Reason: "is required"}
	}
	return nil
}

// ValidateExperience always passes: experience entries are edited out of
// band and never gate advancement to the bank section.
func ValidateExperience(*ExperienceDetails) error {
	return nil
}

func ValidateBank(b *BankDetails) error {
	required := []struct {
		field string
		value string
	}{
		{"accountHolderName", b.AccountHolderName},
		{"accountNumber", b.AccountNumber},
		{"ifscCode", b.IFSCCode},
		{"bankName", b.BankName},
		{"branchName", b.BranchName},
		{"accountType", b.AccountType},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "is required"}
		}
	}
	return nil
}

func pruneContacts(contacts []EmergencyContact) []EmergencyContact {
	out := contacts[:0]
	for _, c := range contacts {
		if !c.Blank() {
			out = append(out, c)
		}
	}
	return out
}

func pruneFamilyMembers(members []FamilyMember) []FamilyMember {
	out := members[:0]
	for _, m := range members {
		if !m.Blank() {
			out = append(out, m)
		}
	}
	return out
}

func anyCompleteContact(contacts []EmergencyContact) bool {
	for _, c := range contacts {
		if c.Complete() {
			return true
		}
	}
	return false
}

func anyCompleteFamilyMember(members []FamilyMember) bool {
	for _, m := range members {
		if m.Complete() {
			return true
		}
	}
	return false
}
