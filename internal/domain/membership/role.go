package membership

// Role is the office a member holds in the lodge
type Role string

const (
	RoleMember           Role = "MEMBER"
	RoleSecretary        Role = "SECRETARY"
	RoleTreasurer        Role = "TREASURER"
	RoleHospitaller      Role = "HOSPITALLER"
	RoleSeniorWarden     Role = "SENIOR_WARDEN"
	RoleJuniorWarden     Role = "JUNIOR_WARDEN"
	RoleWorshipfulMaster Role = "WORSHIPFUL_MASTER"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// AllRoles returns every role in order of seniority
func AllRoles() []Role {
	return []Role{
		RoleMember,
		RoleSecretary,
		RoleTreasurer,
		RoleHospitaller,
		RoleJuniorWarden,
		RoleSeniorWarden,
		RoleWorshipfulMaster,
	}
}

// Permission codes carried in session tokens
const (
	PermStatementOwn     = "statement:own"
	PermStatementAny     = "statement:any"
	PermDebtReport       = "treasury:debts"
	PermDuesRun          = "treasury:dues"
	PermPaymentRecord    = "treasury:payment"
	PermExpenseRecord    = "treasury:expense"
	PermCashBook         = "treasury:cashbook"
	PermAttendanceOwn    = "attendance:own"
	PermRollCall         = "attendance:rollcall"
	PermAttendanceReport = "attendance:report"
	PermMemberRegister   = "members:register"
	PermDossierView      = "members:dossier"
	PermYearClose        = "admin:year_close"
)

var basePermissions = []string{PermStatementOwn, PermAttendanceOwn}

var rolePermissions = map[Role][]string{
	RoleMember:    {},
	RoleSecretary: {PermRollCall, PermAttendanceReport, PermMemberRegister, PermDossierView},
	RoleTreasurer: {
		PermStatementAny, PermDebtReport, PermDuesRun,
		PermPaymentRecord, PermExpenseRecord, PermCashBook,
	},
	RoleHospitaller:  {PermDossierView},
	RoleSeniorWarden: {PermDossierView, PermAttendanceReport},
	RoleJuniorWarden: {PermDossierView, PermAttendanceReport},
	RoleWorshipfulMaster: {
		PermStatementAny, PermDebtReport, PermCashBook,
		PermAttendanceReport, PermDossierView, PermYearClose,
	},
}

// Permissions returns the permission codes granted to a role
func (r Role) Permissions() []string {
	extra, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	perms := make([]string, 0, len(basePermissions)+len(extra))
	perms = append(perms, basePermissions...)
	return append(perms, extra...)
}

// Can reports whether the role grants a permission
func (r Role) Can(permission string) bool {
	for _, p := range r.Permissions() {
		if p == permission {
			return true
		}
	}
	return false
}

// MenuSection is one entry of the dashboard navigation
type MenuSection string

const (
	MenuProfile     MenuSection = "profile"
	MenuStatement   MenuSection = "statement"
	MenuAttendance  MenuSection = "attendance"
	MenuRollCall    MenuSection = "roll_call"
	MenuRegister    MenuSection = "register"
	MenuDossiers    MenuSection = "dossiers"
	MenuTreasury    MenuSection = "treasury"
	MenuDebtReport  MenuSection = "debt_report"
	MenuCashBook    MenuSection = "cash_book"
	MenuYearClose   MenuSection = "year_close"
	MenuAttendStats MenuSection = "attendance_report"
)

var menuRules = []struct {
	section    MenuSection
	permission string
}{
	{MenuProfile, PermStatementOwn},
	{MenuStatement, PermStatementOwn},
	{MenuAttendance, PermAttendanceOwn},
	{MenuRollCall, PermRollCall},
	{MenuRegister, PermMemberRegister},
	{MenuDossiers, PermDossierView},
	{MenuTreasury, PermPaymentRecord},
	{MenuDebtReport, PermDebtReport},
	{MenuCashBook, PermCashBook},
	{MenuAttendStats, PermAttendanceReport},
	{MenuYearClose, PermYearClose},
}

// Menu returns the dashboard sections a role may open
func (r Role) Menu() []MenuSection {
	sections := make([]MenuSection, 0, len(menuRules))
	for _, rule := range menuRules {
		if r.Can(rule.permission) {
			sections = append(sections, rule.section)
		}
	}
	return sections
}
