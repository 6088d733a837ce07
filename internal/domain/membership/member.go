package membership

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/logia/portal/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Degree is the masonic degree a member holds
type Degree int

const (
	DegreeApprentice  Degree = 1
	DegreeFellowCraft Degree = 2
	DegreeMaster      Degree = 3
)

// IsValid checks if the degree is between 1 and 3
func (d Degree) IsValid() bool {
	return d >= DegreeApprentice && d <= DegreeMaster
}

// Status represents whether a member is in good standing
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Password cost for bcrypt
var bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-z0-9_\-.]+$`)

// Member is a lodge member and the login principal of the portal
type Member struct {
	shared.BaseEntity
	Number            int
	FullName          string
	Username          string
	PasswordHash      string
	Role              Role
	Degree            Degree
	Status            Status
	MustResetPassword bool
	Dossier           Dossier
}

// Dossier holds the personal record kept by the secretary
type Dossier struct {
	Phone            string
	Email            string
	Profession       string
	BloodType        string
	EmergencyContact string
	InitiationDate   *time.Time
	Offices          string
}

// NewMember creates an active member with a freshly hashed password
func NewMember(number int, fullName, username, password string, degree Degree) (*Member, error) {
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_MEMBER_NUMBER", "Member number must be positive")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !degree.IsValid() {
		return nil, shared.NewDomainError("INVALID_DEGREE", "Degree must be 1, 2 or 3")
	}

	m := &Member{
		BaseEntity:        shared.NewBaseEntity(),
		Number:            number,
		FullName:          fullName,
		Username:          username,
		Role:              RoleMember,
		Degree:            degree,
		Status:            StatusActive,
		MustResetPassword: true,
	}
	if err := m.SetPassword(password); err != nil {
		return nil, err
	}
	m.MustResetPassword = true
	return m, nil
}

// RestoreMember rebuilds a member carried over from the directory sheet. The
// stored hash is kept as is and the member must choose a new password.
func RestoreMember(number int, fullName, username, passwordHash string, role Role, degree Degree, status Status) (*Member, error) {
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_MEMBER_NUMBER", "Member number must be positive")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !degree.IsValid() {
		return nil, shared.NewDomainError("INVALID_DEGREE", "Degree must be 1, 2 or 3")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Status must be ACTIVE or INACTIVE")
	}
	passwordHash = strings.TrimSpace(passwordHash)
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}

	return &Member{
		BaseEntity:        shared.NewBaseEntity(),
		Number:            number,
		FullName:          fullName,
		Username:          username,
		PasswordHash:      passwordHash,
		Role:              role,
		Degree:            degree,
		Status:            status,
		MustResetPassword: true,
	}, nil
}

// SetPassword replaces the password hash
func (m *Member) SetPassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	m.PasswordHash = string(hash)
	m.MustResetPassword = false
	m.Touch()
	return nil
}

// VerifyPassword checks a password against the stored hash. Records imported
// from the spreadsheet carry unsalted SHA-256 hex digests; those still verify
// and report NeedsRehash.
func (m *Member) VerifyPassword(password string) bool {
	if m.NeedsRehash() {
		sum := sha256.Sum256([]byte(password))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(m.PasswordHash))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) == nil
}

// NeedsRehash reports whether the stored hash is a legacy digest
func (m *Member) NeedsRehash() bool {
	return m.PasswordHash != "" && !strings.HasPrefix(m.PasswordHash, "$2")
}

// Rehash upgrades a legacy digest after a successful login
func (m *Member) Rehash(password string) error {
	reset := m.MustResetPassword
	if err := m.SetPassword(password); err != nil {
		return err
	}
	m.MustResetPassword = reset
	return nil
}

// AssignRole changes the member's office
func (m *Member) AssignRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	m.Role = role
	m.Touch()
	return nil
}

// Promote raises the member one degree
func (m *Member) Promote() error {
	if m.Degree >= DegreeMaster {
		return shared.NewDomainError("INVALID_STATE", "Member already holds the highest degree")
	}
	m.Degree++
	m.Touch()
	return nil
}

// Deactivate removes the member from dues runs and roll calls
func (m *Member) Deactivate() {
	m.Status = StatusInactive
	m.Touch()
}

// IsActive reports whether the member is in good standing
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// CanLogin reports whether the member may open a session
func (m *Member) CanLogin() bool {
	return m.IsActive() && m.PasswordHash != ""
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 50 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 50 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}
