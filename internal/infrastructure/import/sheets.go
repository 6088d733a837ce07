package csvimport

import (
	"strings"

	"github.com/logia/portal/internal/domain/attendance"
	"github.com/logia/portal/internal/domain/cashbook"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/treasury"
)

// Sheet names as they appear in the lodge workbook
const (
	SheetDirectory  = "DIRECTORIO"
	SheetTreasury   = "TESORERIA"
	SheetAttendance = "ASISTENCIAS"
	SheetCashBook   = "LIBRO_CAJA"
)

// MemberRow is one line of the DIRECTORIO tab
type MemberRow struct {
	Number           string `csv:"ID_H" validate:"required,number"`
	FullName         string `csv:"Nombre_Completo" validate:"required,max=200"`
	Username         string `csv:"Usuario" validate:"required,max=50"`
	PasswordHash     string `csv:"Password" validate:"required"`
	Role             string `csv:"Rol,optional" validate:"omitempty,sheetrole"`
	Degree           string `csv:"Grado_Actual" validate:"required,oneof=1 2 3"`
	Status           string `csv:"Estatus,optional" validate:"omitempty,oneof=Activo Inactivo"`
	Phone            string `csv:"Tel_Celular,optional" validate:"max=30"`
	Email            string `csv:"Email,optional" validate:"omitempty,email,max=200"`
	Profession       string `csv:"Profesion,optional" validate:"max=100"`
	BloodType        string `csv:"Tipo_Sangre,optional" validate:"max=5"`
	EmergencyContact string `csv:"Contacto_Emergencia,optional" validate:"max=200"`
	InitiationDate   string `csv:"Fecha_Inic,optional" validate:"omitempty,sheetdate"`
	Offices          string `csv:"Historial_Cargos,optional"`
}

// LedgerRow is one line of the TESORERIA tab
type LedgerRow struct {
	Date    string `csv:"Fecha" validate:"required,sheetdate"`
	Number  string `csv:"ID_H" validate:"required,number"`
	Concept string `csv:"Concepto" validate:"max=200"`
	Kind    string `csv:"Tipo" validate:"required,oneof=Cargo Abono"`
	Amount  string `csv:"Monto" validate:"required,money"`
}

// AttendanceRow is one line of the ASISTENCIAS tab
type AttendanceRow struct {
	MeetingDate string `csv:"Fecha_Tenida" validate:"required,sheetdate"`
	Degree      string `csv:"Grado" validate:"required,oneof=1 2 3"`
	Number      string `csv:"ID_H" validate:"required,number"`
	Status      string `csv:"Estado" validate:"required,sheetattendance"`
	Note        string `csv:"Nota,optional" validate:"max=500"`
}

// CashBookRow is one line of the LIBRO_CAJA tab
type CashBookRow struct {
	Date      string `csv:"Fecha" validate:"required,sheetdate"`
	Concept   string `csv:"Concepto" validate:"required,max=300"`
	Category  string `csv:"Categoria" validate:"required,sheetcategory"`
	In        string `csv:"Entrada" validate:"omitempty,money"`
	Out       string `csv:"Salida" validate:"omitempty,money"`
	Reference string `csv:"Referencia,optional" validate:"max=200"`
}

var sheetRoles = map[string]membership.Role{
	"miembro":           membership.RoleMember,
	"secretario":        membership.RoleSecretary,
	"tesorero":          membership.RoleTreasurer,
	"hospitalario":      membership.RoleHospitaller,
	"primer vigilante":  membership.RoleSeniorWarden,
	"segundo vigilante": membership.RoleJuniorWarden,
	"venerable maestro": membership.RoleWorshipfulMaster,
}

var sheetAttendance = map[string]attendance.Status{
	"presente": attendance.StatusPresent,
	"falta":    attendance.StatusAbsent,
	"justif.":  attendance.StatusExcused,
	"justif":   attendance.StatusExcused,
	"retardo":  attendance.StatusLate,
	"comisión": attendance.StatusOnCommission,
	"comision": attendance.StatusOnCommission,
}

var sheetCategories = map[string]cashbook.Category{
	"ingreso":   cashbook.CategoryIncome,
	"operativo": cashbook.CategoryOperating,
	"gl":        cashbook.CategoryGrandLodge,
	"evento":    cashbook.CategoryEvent,
}

func sheetKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// RoleFromSheet maps a Rol cell; blank means plain member
func RoleFromSheet(s string) (membership.Role, bool) {
	if strings.TrimSpace(s) == "" {
		return membership.RoleMember, true
	}
	r, ok := sheetRoles[sheetKey(s)]
	return r, ok
}

// AttendanceFromSheet maps an Estado cell
func AttendanceFromSheet(s string) (attendance.Status, bool) {
	st, ok := sheetAttendance[sheetKey(s)]
	return st, ok
}

// CategoryFromSheet maps a Categoria cell
func CategoryFromSheet(s string) (cashbook.Category, bool) {
	c, ok := sheetCategories[sheetKey(s)]
	return c, ok
}

// KindFromSheet maps a Tipo cell
func KindFromSheet(s string) treasury.EntryKind {
	if s == "Abono" {
		return treasury.EntryKindPayment
	}
	return treasury.EntryKindCharge
}

// StatusFromSheet maps an Estatus cell; blank means active
func StatusFromSheet(s string) membership.Status {
	if s == "Inactivo" {
		return membership.StatusInactive
	}
	return membership.StatusActive
}
