package onboarding

// SectionID identifies one of the four onboarding steps.
type SectionID string

const (
	SectionPersonal   SectionID = "personal"
	SectionEducation  SectionID = "education"
	SectionExperience SectionID = "experience"
	SectionBank       SectionID = "bank"
)

// SectionOrder is the canonical sequence used for forward/back navigation.
// The last entry is the terminal section.
var SectionOrder = []SectionID{SectionPersonal, SectionEducation, SectionExperience, SectionBank}

func (s SectionID) Valid() bool {
	switch s {
	case SectionPersonal, SectionEducation, SectionExperience, SectionBank:
		return true
	}
	return false
}

func (s SectionID) Terminal() bool {
	return s == SectionOrder[len(SectionOrder)-1]
}

// Next returns the section after s in canonical order.
func (s SectionID) Next() (SectionID, bool) {
	for i, candidate := range SectionOrder {
		if candidate == s && i+1 < len(SectionOrder) {
			return SectionOrder[i+1], true
		}
	}
	return "", false
}

// Prev returns the section before s in canonical order.
func (s SectionID) Prev() (SectionID, bool) {
	for i, candidate := range SectionOrder {
		if candidate == s && i > 0 {
			return SectionOrder[i-1], true
		}
	}
	return "", false
}

type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Country      string `json:"country"`
	State        string `json:"state"`
	City         string `json:"city"`
	ZipCode      string `json:"zipCode"`
}

type EmergencyContact struct {
	Relationship string `json:"relationship"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
}

func (c EmergencyContact) Blank() bool {
	return c.Relationship == "" && c.Name == "" && c.Phone == ""
}

func (c EmergencyContact) Complete() bool {
	return c.Relationship != "" && c.Name != "" && c.Phone != ""
}

type FamilyMember struct {
	Relationship string `json:"relationship"`
	Name         string `json:"name"`
	Occupation   string `json:"occupation"`
	Phone        string `json:"phone"`
}

func (m FamilyMember) Blank() bool {
	return m.Relationship == "" && m.Name == "" && m.Occupation == "" && m.Phone == ""
}

func (m FamilyMember) Complete() bool {
	return m.Relationship != "" && m.Name != "" && m.Occupation != "" && m.Phone != ""
}

type PersonalDetails struct {
	EmployeeID        string             `json:"employeeId"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	DateOfBirth       string             `json:"dateOfBirth"`
	Gender            string             `json:"gender"`
	BloodGroup        string             `json:"bloodGroup"`
	MaritalStatus     string             `json:"maritalStatus"`
	AadhaarNumber     string             `json:"aadhaarNumber"`
	PANNumber         string             `json:"panNumber"`
	ESICNumber        string             `json:"esicNumber,omitempty"`
	UANNumber         string             `json:"uanNumber,omitempty"`
	PresentAddress    Address            `json:"presentAddress"`
	PermanentAddress  Address            `json:"permanentAddress"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
	FamilyMembers     []FamilyMember     `json:"familyMembers"`
}

type EducationDetails struct {
	SSCDocument    string `json:"sscDocument"`
	HSCDocument    string `json:"hscDocument"`
	DegreeDocument string `json:"degreeDocument"`
}

type ExperienceEntry struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type ExperienceDetails struct {
	Entries []ExperienceEntry `json:"entries"`
}

type BankDetails struct {
	AccountHolderName string `json:"accountHolderName"`
	AccountNumber     string `json:"accountNumber"`
	IFSCCode          string `json:"ifscCode"`
	BankName          string `json:"bankName"`
	BranchName        string `json:"branchName"`
	AccountType       string `json:"accountType"`
}

// SectionPayload is the tagged union of the four section payloads.
type SectionPayload interface {
	Section() SectionID
}

func (*PersonalDetails) Section() SectionID   { return SectionPersonal }
func (*EducationDetails) Section() SectionID  { return SectionEducation }
func (*ExperienceDetails) Section() SectionID { return SectionExperience }
func (*BankDetails) Section() SectionID       { return SectionBank }

// Draft is the in-progress onboarding form state. One payload slot per
// section keeps the union typed instead of carrying opaque blobs.
type Draft struct {
	Active           SectionID          `json:"active"`
	Progress         map[SectionID]bool `json:"progress"`
	EmployeeRecordID string             `json:"employeeRecordId,omitempty"`
	Personal         *PersonalDetails   `json:"personal,omitempty"`
	Education        *EducationDetails  `json:"education,omitempty"`
	Experience       *ExperienceDetails `json:"experience,omitempty"`
	Bank             *BankDetails       `json:"bank,omitempty"`
}

func NewDraft() *Draft {
	progress := make(map[SectionID]bool, len(SectionOrder))
	for _, section := range SectionOrder {
		progress[section] = false
	}
	return &Draft{Active: SectionPersonal, Progress: progress}
}

func (d *Draft) SetPayload(payload SectionPayload) {
	switch p := payload.(type) {
	case *PersonalDetails:
		d.Personal = p
	case *EducationDetails:
		d.Education = p
	case *ExperienceDetails:
		d.Experience = p
	case *BankDetails:
		d.Bank = p
	}
}

func (d *Draft) Payload(section SectionID) SectionPayload {
	switch section {
	case SectionPersonal:
		if d.Personal != nil {
			return d.Personal
		}
	case SectionEducation:
		if d.Education != nil {
			return d.Education
		}
	case SectionExperience:
		if d.Experience != nil {
			return d.Experience
		}
	case SectionBank:
		if d.Bank != nil {
			return d.Bank
		}
	}
	return nil
}

func (d *Draft) HasSection(section SectionID) bool {
	return d.Payload(section) != nil
}
