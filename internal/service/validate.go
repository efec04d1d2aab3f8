package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRegex    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	regNumRegex  = regexp.MustCompile(`^DENT/\d{4}/\d{3}$`)
	staffIDRegex = regexp.MustCompile(`^LEC/\d{3}$`)
)

// Departments recognized by the faculty. Both students and lecturers must
// pick from this list.
var allowedDepartments = []string{
	"Basic Sciences",
	"Community Dental Health",
	"Oral Medicine & Periodontology",
	"Oral & Maxillofacial Surgery",
	"Oral Pathology",
	"Prosthetic Dentistry",
	"Restorative Dentistry",
}

var allowedAcademicStatuses = []string{"Active", "Suspended", "Graduated"}

var allowedDesignations = []string{"Lecturer", "Consultant", "Demonstrator"}

// ValidateEmail returns the lowercased, trimmed address or a ValidationError.
func ValidateEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", invalid("email is required")
	}
	if len(trimmed) > 255 {
		return "", invalid("email must not exceed 255 characters")
	}
	if strings.Contains(trimmed, " ") {
		return "", invalid("email cannot contain spaces")
	}
	if !emailRegex.MatchString(trimmed) {
		return "", invalid("invalid email format")
	}
	return strings.ToLower(trimmed), nil
}

// ValidatePassword enforces the baseline policy: at least 8 characters with
// one uppercase, one lowercase, one digit, and one special character, and
// never equal to the account email.
func ValidatePassword(password, email string) error {
	return validatePassword(password, email, 8)
}

// ValidateAdminPassword is the baseline policy with a 12-character floor.
func ValidateAdminPassword(password, email string) error {
	return validatePassword(password, email, 12)
}

func validatePassword(password, email string, minLen int) error {
	if password == "" {
		return invalid("password is required")
	}
	if len(password) < minLen {
		return invalid("password must be at least %d characters long", minLen)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	if !upper {
		return invalid("password must contain at least one uppercase letter")
	}
	if !lower {
		return invalid("password must contain at least one lowercase letter")
	}
	if !digit {
		return invalid("password must contain at least one number")
	}
	if !special {
		return invalid("password must contain at least one special character (@$!%%*?&)")
	}
	if email != "" && strings.EqualFold(password, email) {
		return invalid("password cannot be the same as email")
	}
	return nil
}

// ValidateFullName allows letters and spaces only, 3 to 200 characters.
func ValidateFullName(fullName string) (string, error) {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return "", invalid("full name is required")
	}
	if len(trimmed) < 3 {
		return "", invalid("full name must be at least 3 characters")
	}
	if len(trimmed) > 200 {
		return "", invalid("full name must not exceed 200 characters")
	}
	if !nameRegex.MatchString(trimmed) {
		return "", invalid("full name can only contain letters and spaces")
	}
	return trimmed, nil
}

// ValidateRegistrationNumber checks the DENT/YYYY/XXX format with the year
// in 2000-2030 and the serial in 001-200, and returns the uppercased value.
func ValidateRegistrationNumber(regNumber string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(regNumber))
	if trimmed == "" {
		return "", invalid("registration number is required for students")
	}
	if !regNumRegex.MatchString(trimmed) {
		return "", invalid("registration number must follow format: DENT/YYYY/XXX (e.g., DENT/2023/001)")
	}
	parts := strings.Split(trimmed, "/")
	year, _ := strconv.Atoi(parts[1])
	num, _ := strconv.Atoi(parts[2])
	if year < 2000 || year > 2030 {
		return "", invalid("registration number year must be between 2000-2030")
	}
	if num < 1 || num > 200 {
		return "", invalid("registration number must be between 001-200")
	}
	return trimmed, nil
}

func ValidateBatchYear(year int) error {
	if year == 0 {
		return invalid("batch year is required for students")
	}
	if year < 2000 || year > 2030 {
		return invalid("batch year must be between 2000 and 2030")
	}
	return nil
}

// ValidateDepartment checks against the faculty list. Pass required=false
// for students, where the field is optional.
func ValidateDepartment(department string, required bool) (string, error) {
	if department == "" {
		if required {
			return "", invalid("department is required for lecturers")
		}
		return "", nil
	}
	for _, d := range allowedDepartments {
		if d == department {
			return department, nil
		}
	}
	return "", invalid("invalid department, must be one of: %s", strings.Join(allowedDepartments, ", "))
}

// ValidateAcademicStatus defaults to Active when empty.
func ValidateAcademicStatus(status string) (string, error) {
	if status == "" {
		return "Active", nil
	}
	for _, s := range allowedAcademicStatuses {
		if s == status {
			return status, nil
		}
	}
	return "", invalid("academic status must be one of: %s", strings.Join(allowedAcademicStatuses, ", "))
}

// ValidateStaffID checks the LEC/XXX format. Empty is allowed; a staff ID
// is recommended but not required for lecturers.
func ValidateStaffID(staffID string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(staffID))
	if trimmed == "" {
		return "", nil
	}
	if !staffIDRegex.MatchString(trimmed) {
		return "", invalid("staff ID must follow format: LEC/XXX (e.g., LEC/045)")
	}
	return trimmed, nil
}

// ValidateDesignation defaults to Lecturer when empty.
func ValidateDesignation(designation string) (string, error) {
	if designation == "" {
		return "Lecturer", nil
	}
	for _, d := range allowedDesignations {
		if d == designation {
			return designation, nil
		}
	}
	return "", invalid("designation must be one of: %s", strings.Join(allowedDesignations, ", "))
}

const (
	maxExamFileSize     = 100 << 20
	maxProfileImageSize = 2 << 20
)

// ValidateExamFile accepts JPG, PNG, or PDF up to 100MB.
func ValidateExamFile(mimeType string, size int64) error {
	switch mimeType {
	case "image/jpeg", "image/jpg", "image/png", "application/pdf":
	default:
		return invalid("file must be JPG, PNG, or PDF format")
	}
	if size > maxExamFileSize {
		return invalid("file must not exceed 100MB")
	}
	return nil
}

// ValidateProfileImage accepts JPG or PNG up to 2MB.
func ValidateProfileImage(mimeType string, size int64) error {
	switch mimeType {
	case "image/jpeg", "image/jpg", "image/png":
	default:
		return invalid("profile image must be JPG or PNG format")
	}
	if size > maxProfileImageSize {
		return invalid("profile image must not exceed 2MB")
	}
	return nil
}
