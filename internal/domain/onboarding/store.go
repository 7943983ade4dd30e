package onboarding

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "peopledesk/internal/platform/crypto"
)

// Store is the pgx-backed employee store. Aadhaar, PAN and bank account
// numbers are encrypted at rest when a data key is configured; the plain
// columns stay populated otherwise so development setups keep working.
type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

func (s *Store) CreateEmployee(ctx context.Context, personal *PersonalDetails) (string, error) {
	aadhaarPlain, aadhaarEnc := s.sensitive(personal.AadhaarNumber)
	panPlain, panEnc := s.sensitive(personal.PANNumber)

	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_number, first_name, last_name, email, phone, date_of_birth,
      gender, blood_group, marital_status, aadhaar_number, aadhaar_number_enc,
      pan_number, pan_number_enc, esic_number, uan_number, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,'onboarding')
    RETURNING id
  `,
		personal.EmployeeID, personal.FirstName, personal.LastName, personal.Email, personal.Phone,
		personal.DateOfBirth, personal.Gender, personal.BloodGroup, personal.MaritalStatus,
		aadhaarPlain, aadhaarEnc, panPlain, panEnc,
		nullIfEmpty(personal.ESICNumber), nullIfEmpty(personal.UANNumber),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicateEmployeeID
		}
		return "", err
	}

	if err := s.saveAddresses(ctx, id, personal); err != nil {
		return "", err
	}
	if err := s.replaceContacts(ctx, id, personal.EmergencyContacts); err != nil {
		return "", err
	}
	if err := s.replaceFamilyMembers(ctx, id, personal.FamilyMembers); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) SaveSection(ctx context.Context, employeeRecordID string, payload SectionPayload) error {
	switch p := payload.(type) {
	case *PersonalDetails:
		return s.savePersonal(ctx, employeeRecordID, p)
	case *EducationDetails:
		return s.saveEducation(ctx, employeeRecordID, p)
	case *ExperienceDetails:
		return s.saveExperience(ctx, employeeRecordID, p)
	case *BankDetails:
		return s.saveBank(ctx, employeeRecordID, p)
	}
	return ErrUnknownSection
}

func (s *Store) savePersonal(ctx context.Context, employeeRecordID string, personal *PersonalDetails) error {
	aadhaarPlain, aadhaarEnc := s.sensitive(personal.AadhaarNumber)
	panPlain, panEnc := s.sensitive(personal.PANNumber)

	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $1,
        first_name = $2,
        last_name = $3,
        email = $4,
        phone = $5,
        date_of_birth = $6,
        gender = $7,
        blood_group = $8,
        marital_status = $9,
        aadhaar_number = $10,
        aadhaar_number_enc = $11,
        pan_number = $12,
        pan_number_enc = $13,
        esic_number = $14,
        uan_number = $15,
        updated_at = now()
    WHERE id = $16
  `,
		personal.EmployeeID, personal.FirstName, personal.LastName, personal.Email, personal.Phone,
		personal.DateOfBirth, personal.Gender, personal.BloodGroup, personal.MaritalStatus,
		aadhaarPlain, aadhaarEnc, panPlain, panEnc,
		nullIfEmpty(personal.ESICNumber), nullIfEmpty(personal.UANNumber), employeeRecordID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}

	if err := s.saveAddresses(ctx, employeeRecordID, personal); err != nil {
		return err
	}
	if err := s.replaceContacts(ctx, employeeRecordID, personal.EmergencyContacts); err != nil {
		return err
	}
	return s.replaceFamilyMembers(ctx, employeeRecordID, personal.FamilyMembers)
}

func (s *Store) saveEducation(ctx context.Context, employeeRecordID string, education *EducationDetails) error {
	if err := s.ensureEmployee(ctx, employeeRecordID); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_education (employee_id, ssc_document, hsc_document, degree_document)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (employee_id)
    DO UPDATE SET ssc_document = EXCLUDED.ssc_document,
                  hsc_document = EXCLUDED.hsc_document,
                  degree_document = EXCLUDED.degree_document,
                  updated_at = now()
  `, employeeRecordID, education.SSCDocument, education.HSCDocument, education.DegreeDocument)
	return err
}

func (s *Store) saveExperience(ctx context.Context, employeeRecordID string, experience *ExperienceDetails) error {
	if err := s.ensureEmployee(ctx, employeeRecordID); err != nil {
		return err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM employee_experience
    WHERE employee_id = $1
  `, employeeRecordID); err != nil {
		return err
	}

	for _, entry := range experience.Entries {
		if entry.Company == "" && entry.Title == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO employee_experience (employee_id, company, title, start_date, end_date, description)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, employeeRecordID, entry.Company, entry.Title, nullIfEmpty(entry.StartDate),
			nullIfEmpty(entry.EndDate), nullIfEmpty(entry.Description)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) saveBank(ctx context.Context, employeeRecordID string, bank *BankDetails) error {
	if err := s.ensureEmployee(ctx, employeeRecordID); err != nil {
		return err
	}
	accountPlain, accountEnc := s.sensitive(bank.AccountNumber)
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_bank_details (employee_id, account_holder_name, account_number,
      account_number_enc, ifsc_code, bank_name, branch_name, account_type)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (employee_id)
    DO UPDATE SET account_holder_name = EXCLUDED.account_holder_name,
                  account_number = EXCLUDED.account_number,
                  account_number_enc = EXCLUDED.account_number_enc,
                  ifsc_code = EXCLUDED.ifsc_code,
                  bank_name = EXCLUDED.bank_name,
                  branch_name = EXCLUDED.branch_name,
                  account_type = EXCLUDED.account_type,
                  updated_at = now()
  `, employeeRecordID, bank.AccountHolderName, accountPlain, accountEnc,
		bank.IFSCCode, bank.BankName, bank.BranchName, bank.AccountType)
	return err
}

func (s *Store) saveAddresses(ctx context.Context, employeeRecordID string, personal *PersonalDetails) error {
	for _, addr := range []struct {
		kind    string
		address Address
	}{
		{"present", personal.PresentAddress},
		{"permanent", personal.PermanentAddress},
	} {
		if addr.address == (Address{}) {
			continue
		}
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO employee_addresses (employee_id, kind, address_line1, address_line2, country, state, city, zip_code)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
      ON CONFLICT (employee_id, kind)
      DO UPDATE SET address_line1 = EXCLUDED.address_line1,
                    address_line2 = EXCLUDED.address_line2,
                    country = EXCLUDED.country,
                    state = EXCLUDED.state,
                    city = EXCLUDED.city,
                    zip_code = EXCLUDED.zip_code,
                    updated_at = now()
    `, employeeRecordID, addr.kind, addr.address.AddressLine1, nullIfEmpty(addr.address.AddressLine2),
			addr.address.Country, addr.address.State, addr.address.City, addr.address.ZipCode); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) replaceContacts(ctx context.Context, employeeRecordID string, contacts []EmergencyContact) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM employee_emergency_contacts
    WHERE employee_id = $1
  `, employeeRecordID); err != nil {
		return err
	}

	for _, contact := range contacts {
		if contact.Blank() {
			continue
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO employee_emergency_contacts (employee_id, relationship, full_name, phone)
      VALUES ($1,$2,$3,$4)
    `, employeeRecordID, contact.Relationship, contact.Name, contact.Phone); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) replaceFamilyMembers(ctx context.Context, employeeRecordID string, members []FamilyMember) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM employee_family_members
    WHERE employee_id = $1
  `, employeeRecordID); err != nil {
		return err
	}

	for _, member := range members {
		if member.Blank() {
			continue
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO employee_family_members (employee_id, relationship, full_name, occupation, phone)
      VALUES ($1,$2,$3,$4,$5)
    `, employeeRecordID, member.Relationship, member.Name, nullIfEmpty(member.Occupation), member.Phone); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) ensureEmployee(ctx context.Context, employeeRecordID string) error {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE id = $1
  `, employeeRecordID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmployeeNotFound
		}
		return err
	}
	if count == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) sensitive(value string) (any, []byte) {
	if s.Crypto == nil || !s.Crypto.Configured() {
		return value, nil
	}
	encrypted, err := s.Crypto.EncryptString(value)
	if err != nil {
		return value, nil
	}
	return nil, encrypted
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
