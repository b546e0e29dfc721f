/*
admin.go - Personnel and user administration

PURPOSE:
  Admin CRUD for the roster and for login accounts, plus the paginated
  listings backing the admin screens. Password material is produced
  through the injected PasswordHasher capability; this package never
  sees a hashing algorithm.

RULES:
  - New/updated passwords must be at least 8 characters with a lowercase
    letter, an uppercase letter and a digit.
  - The primary admin account cannot be deleted.
  - Deleting a person cascades to their availability records (enforced by
    the store's foreign keys).
  - Bulk import REPLACES the whole roster.
*/
package muster

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// PageSize is the fixed page length of the admin listings.
const PageSize = 15

// PasswordHasher is the opaque password-hash capability.
// Implemented by the session package.
type PasswordHasher interface {
	NewSalt() ([]byte, error)
	Hash(password string, salt []byte) []byte
}

// WithPasswordHasher wires the hash capability used by user administration.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// =============================================================================
// PERSONNEL
// =============================================================================

// PersonnelPage returns one page of the roster. fetchAll disables paging
// (used by the submission form, which needs the whole department).
func (s *Service) PersonnelPage(ctx context.Context, department, term string, page int, fetchAll bool) ([]Person, int, error) {
	if page < 1 {
		page = 1
	}
	limit, offset := PageSize, (page-1)*PageSize
	if fetchAll {
		limit, offset = -1, 0
	}
	return s.store.SearchPersonnel(ctx, department, strings.TrimSpace(term), limit, offset)
}

// PersonDetails returns one person for the edit form.
func (s *Service) PersonDetails(ctx context.Context, id string) (*Person, error) {
	if id == "" {
		return nil, Validationf("missing personnel id")
	}
	p, err := s.store.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPersonNotFound
	}
	return p, nil
}

// AddPerson creates a roster entry. All descriptive fields are required.
func (s *Service) AddPerson(ctx context.Context, p Person) (*Person, error) {
	if err := validatePerson(p); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	if err := s.store.SavePerson(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePerson rewrites a roster entry.
func (s *Service) UpdatePerson(ctx context.Context, p Person) error {
	if p.ID == "" {
		return Validationf("missing personnel id")
	}
	if err := validatePerson(p); err != nil {
		return err
	}
	return s.store.UpdatePerson(ctx, p)
}

// DeletePerson removes a person; their availability records cascade.
func (s *Service) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		return Validationf("missing personnel id")
	}
	return s.store.DeletePerson(ctx, id)
}

// ImportPersonnel replaces the entire roster with the given entries.
func (s *Service) ImportPersonnel(ctx context.Context, people []Person) (int, error) {
	for i := range people {
		if err := validatePerson(people[i]); err != nil {
			return 0, err
		}
		people[i].ID = uuid.NewString()
	}
	if err := s.store.ReplaceAllPersonnel(ctx, people); err != nil {
		return 0, err
	}
	return len(people), nil
}

func validatePerson(p Person) error {
	if p.Rank == "" || p.FirstName == "" || p.LastName == "" ||
		p.Position == "" || p.Specialty == "" || p.Department == "" {
		return Validationf("incomplete personnel data: all fields are required")
	}
	return nil
}

// Departments lists the distinct department names on the roster.
func (s *Service) Departments(ctx context.Context) ([]string, error) {
	return s.store.Departments(ctx)
}

// WeeklySubmissionStatus returns the timestamp of a department's active
// weekly report, or "" when nothing is submitted.
func (s *Service) WeeklySubmissionStatus(ctx context.Context, department string) (string, error) {
	r, err := s.store.ActiveReportForDepartment(ctx, department)
	if err != nil || r == nil {
		return "", err
	}
	return r.Timestamp, nil
}

// =============================================================================
// USERS
// =============================================================================

// UsersPage returns one page of login accounts matching term.
func (s *Service) UsersPage(ctx context.Context, term string, page int) ([]User, int, error) {
	if page < 1 {
		page = 1
	}
	return s.store.SearchUsers(ctx, strings.TrimSpace(term), PageSize, (page-1)*PageSize)
}

// AddUser creates a login account with a freshly salted password hash.
func (s *Service) AddUser(ctx context.Context, u User, password string) error {
	if u.Username == "" || password == "" {
		return Validationf("username and password are required")
	}
	if err := checkPasswordComplexity(password); err != nil {
		return err
	}
	existing, err := s.store.GetUser(ctx, u.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}
	if err := s.setCredentials(&u, password); err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = "user"
	}
	return s.store.SaveUser(ctx, u)
}

// UpdateUser rewrites an account's profile; a non-empty password also
// rotates the credentials.
func (s *Service) UpdateUser(ctx context.Context, u User, password string) error {
	if u.Username == "" {
		return Validationf("missing username")
	}
	updatePassword := password != ""
	if updatePassword {
		if err := checkPasswordComplexity(password); err != nil {
			return err
		}
		if err := s.setCredentials(&u, password); err != nil {
			return err
		}
	}
	return s.store.UpdateUser(ctx, u, updatePassword)
}

// DeleteUser removes an account. The primary admin is protected.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if username == s.adminUser && s.adminUser != "" {
		return ErrProtectedUser
	}
	return s.store.DeleteUser(ctx, username)
}

func (s *Service) setCredentials(u *User, password string) error {
	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}
	u.Salt = salt
	u.Key = s.hasher.Hash(password, salt)
	return nil
}

// checkPasswordComplexity enforces the minimum password rule: at least 8
// characters with a lowercase letter, an uppercase letter and a digit.
func checkPasswordComplexity(password string) error {
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if len(password) < 8 || !hasLower || !hasUpper || !hasDigit {
		return Validationf("password must be at least 8 characters and contain lowercase, uppercase and digit characters")
	}
	return nil
}
