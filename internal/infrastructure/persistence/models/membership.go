package models

import (
	"time"

	"github.com/logia/portal/internal/domain/membership"
)

// MemberModel is the persistence model for membership.Member
type MemberModel struct {
	BaseModel
	Number            int    `gorm:"not null;uniqueIndex"`
	FullName          string `gorm:"type:varchar(200);not null;index"`
	Username          string `gorm:"type:varchar(50);not null;uniqueIndex"`
	PasswordHash      string `gorm:"type:varchar(100);not null"`
	Role              string `gorm:"type:varchar(30);not null;default:'MEMBER'"`
	Degree            int    `gorm:"not null"`
	Status            string `gorm:"type:varchar(10);not null;default:'ACTIVE';index"`
	MustResetPassword bool   `gorm:"not null;default:true"`
	Phone             string `gorm:"type:varchar(30)"`
	Email             string `gorm:"type:varchar(200)"`
	Profession        string `gorm:"type:varchar(100)"`
	BloodType         string `gorm:"type:varchar(5)"`
	EmergencyContact  string `gorm:"type:varchar(200)"`
	InitiationDate    *time.Time
	Offices           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the model to a domain entity
func (m *MemberModel) ToDomain() *membership.Member {
	return &membership.Member{
		BaseEntity:        m.BaseModel.ToDomain(),
		Number:            m.Number,
		FullName:          m.FullName,
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		Role:              membership.Role(m.Role),
		Degree:            membership.Degree(m.Degree),
		Status:            membership.Status(m.Status),
		MustResetPassword: m.MustResetPassword,
		Dossier: membership.Dossier{
			Phone:            m.Phone,
			Email:            m.Email,
			Profession:       m.Profession,
			BloodType:        m.BloodType,
			EmergencyContact: m.EmergencyContact,
			InitiationDate:   m.InitiationDate,
			Offices:          m.Offices,
		},
	}
}

// FromDomain populates the model from a domain entity
func (m *MemberModel) FromDomain(e *membership.Member) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Number = e.Number
	m.FullName = e.FullName
	m.Username = e.Username
	m.PasswordHash = e.PasswordHash
	m.Role = string(e.Role)
	m.Degree = int(e.Degree)
	m.Status = string(e.Status)
	m.MustResetPassword = e.MustResetPassword
	m.Phone = e.Dossier.Phone
	m.Email = e.Dossier.Email
	m.Profession = e.Dossier.Profession
	m.BloodType = e.Dossier.BloodType
	m.EmergencyContact = e.Dossier.EmergencyContact
	m.InitiationDate = e.Dossier.InitiationDate
	m.Offices = e.Dossier.Offices
}

// MemberModelFromDomain creates a new model from a domain entity
func MemberModelFromDomain(e *membership.Member) *MemberModel {
	m := &MemberModel{}
	m.FromDomain(e)
	return m
}
