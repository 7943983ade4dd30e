package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/internal/domain/onboarding"
	cryptoutil "peopledesk/internal/platform/crypto"
)

var ErrNotFound = errors.New("employee not found")

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_number, first_name, last_name, email, COALESCE(phone, ''), status, created_at
    FROM employees
    ORDER BY last_name, first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var emp Summary
		if err := rows.Scan(&emp.ID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName,
			&emp.Email, &emp.Phone, &emp.Status, &emp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, employeeID string) (*Profile, error) {
	var profile Profile
	var aadhaarPlain, panPlain string
	var aadhaarEnc, panEnc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_number, first_name, last_name, email, COALESCE(phone, ''),
           COALESCE(date_of_birth, ''), COALESCE(gender, ''), COALESCE(blood_group, ''),
           COALESCE(marital_status, ''),
           COALESCE(aadhaar_number, ''), aadhaar_number_enc,
           COALESCE(pan_number, ''), pan_number_enc,
           COALESCE(esic_number, ''), COALESCE(uan_number, ''),
           status, created_at, updated_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(
		&profile.ID, &profile.Personal.EmployeeID, &profile.Personal.FirstName, &profile.Personal.LastName,
		&profile.Personal.Email, &profile.Personal.Phone, &profile.Personal.DateOfBirth,
		&profile.Personal.Gender, &profile.Personal.BloodGroup, &profile.Personal.MaritalStatus,
		&aadhaarPlain, &aadhaarEnc, &panPlain, &panEnc,
		&profile.Personal.ESICNumber, &profile.Personal.UANNumber,
		&profile.Status, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	profile.Personal.AadhaarNumber = s.decryptFallback(aadhaarEnc, aadhaarPlain)
	profile.Personal.PANNumber = s.decryptFallback(panEnc, panPlain)

	if err := s.loadAddresses(ctx, employeeID, &profile.Personal); err != nil {
		return nil, err
	}
	if err := s.loadContacts(ctx, employeeID, &profile.Personal); err != nil {
		return nil, err
	}
	if err := s.loadFamilyMembers(ctx, employeeID, &profile.Personal); err != nil {
		return nil, err
	}
	if err := s.loadEducation(ctx, employeeID, &profile); err != nil {
		return nil, err
	}
	experience, err := s.ListExperience(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	profile.Experience = experience
	if err := s.loadBank(ctx, employeeID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) ListExperience(ctx context.Context, employeeID string) ([]onboarding.ExperienceEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT company, title, COALESCE(start_date, ''), COALESCE(end_date, ''), COALESCE(description, '')
    FROM employee_experience
    WHERE employee_id = $1
    ORDER BY start_date DESC NULLS LAST, company
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []onboarding.ExperienceEntry
	for rows.Next() {
		var entry onboarding.ExperienceEntry
		if err := rows.Scan(&entry.Company, &entry.Title, &entry.StartDate, &entry.EndDate, &entry.Description); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) AddExperience(ctx context.Context, employeeID string, entry onboarding.ExperienceEntry) error {
	cmd, err := s.DB.Exec(ctx, `
    INSERT INTO employee_experience (employee_id, company, title, start_date, end_date, description)
    SELECT id, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, '')
    FROM employees
    WHERE id = $1
  `, employeeID, entry.Company, entry.Title, entry.StartDate, entry.EndDate, entry.Description)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkOnboarded(ctx context.Context, employeeID string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET status = 'active', updated_at = now()
    WHERE id = $1
  `, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) loadAddresses(ctx context.Context, employeeID string, personal *onboarding.PersonalDetails) error {
	rows, err := s.DB.Query(ctx, `
    SELECT kind, address_line1, COALESCE(address_line2, ''), country, state, city, zip_code
    FROM employee_addresses
    WHERE employee_id = $1
  `, employeeID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var addr onboarding.Address
		if err := rows.Scan(&kind, &addr.AddressLine1, &addr.AddressLine2,
			&addr.Country, &addr.State, &addr.City, &addr.ZipCode); err != nil {
			return err
		}
		switch kind {
		case "present":
			personal.PresentAddress = addr
		case "permanent":
			personal.PermanentAddress = addr
		}
	}
	return rows.Err()
}

func (s *Store) loadContacts(ctx context.Context, employeeID string, personal *onboarding.PersonalDetails) error {
	rows, err := s.DB.Query(ctx, `
    SELECT relationship, full_name, phone
    FROM employee_emergency_contacts
    WHERE employee_id = $1
    ORDER BY created_at
  `, employeeID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var contact onboarding.EmergencyContact
		if err := rows.Scan(&contact.Relationship, &contact.Name, &contact.Phone); err != nil {
			return err
		}
		personal.EmergencyContacts = append(personal.EmergencyContacts, contact)
	}
	return rows.Err()
}

func (s *Store) loadFamilyMembers(ctx context.Context, employeeID string, personal *onboarding.PersonalDetails) error {
	rows, err := s.DB.Query(ctx, `
    SELECT relationship, full_name, COALESCE(occupation, ''), phone
    FROM employee_family_members
    WHERE employee_id = $1
    ORDER BY created_at
  `, employeeID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var member onboarding.FamilyMember
		if err := rows.Scan(&member.Relationship, &member.Name, &member.Occupation, &member.Phone); err != nil {
			return err
		}
		personal.FamilyMembers = append(personal.FamilyMembers, member)
	}
	return rows.Err()
}

func (s *Store) loadEducation(ctx context.Context, employeeID string, profile *Profile) error {
	var education onboarding.EducationDetails
	err := s.DB.QueryRow(ctx, `
    SELECT ssc_document, hsc_document, degree_document
    FROM employee_education
    WHERE employee_id = $1
  `, employeeID).Scan(&education.SSCDocument, &education.HSCDocument, &education.DegreeDocument)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	profile.Education = &education
	return nil
}

func (s *Store) loadBank(ctx context.Context, employeeID string, profile *Profile) error {
	var bank onboarding.BankDetails
	var accountPlain string
	var accountEnc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT account_holder_name, COALESCE(account_number, ''), account_number_enc,
           ifsc_code, bank_name, branch_name, account_type
    FROM employee_bank_details
    WHERE employee_id = $1
  `, employeeID).Scan(&bank.AccountHolderName, &accountPlain, &accountEnc,
		&bank.IFSCCode, &bank.BankName, &bank.BranchName, &bank.AccountType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	bank.AccountNumber = s.decryptFallback(accountEnc, accountPlain)
	profile.Bank = &bank
	return nil
}

func (s *Store) decryptFallback(encrypted []byte, plain string) string {
	if s.Crypto == nil || !s.Crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	decrypted, err := s.Crypto.DecryptString(encrypted)
	if err != nil {
		return plain
	}
	return decrypted
}
