package types

import (
	"strings"
	"time"
)

type DocumentType string

const (
	DocumentTypeBarangayClearance DocumentType = "Barangay Clearance"
	DocumentTypeBusinessClearance DocumentType = "Barangay Business Clearance"
	DocumentTypeResidency         DocumentType = "Certificate of Residency"
	DocumentTypeIndigency         DocumentType = "Certificate of Indigency"
	DocumentTypeGoodMoral         DocumentType = "Certificate of Good Moral Character"
)

var DocumentTypes = []DocumentType{
	DocumentTypeBarangayClearance,
	DocumentTypeBusinessClearance,
	DocumentTypeResidency,
	DocumentTypeIndigency,
	DocumentTypeGoodMoral,
}

var documentTypeAliases = map[string]DocumentType{
	"business clearance":        DocumentTypeBusinessClearance,
	"good moral character":      DocumentTypeGoodMoral,
	"good moral":                DocumentTypeGoodMoral,
	"clearance":                 DocumentTypeBarangayClearance,
	"residency":                 DocumentTypeResidency,
	"indigency":                 DocumentTypeIndigency,
	"certificate of good moral": DocumentTypeGoodMoral,
}

// ParseDocumentType accepts the canonical name, a short alias or a URL slug.
func ParseDocumentType(s string) (DocumentType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", ErrInvalidDocumentType
	}

	for _, t := range DocumentTypes {
		if strings.ToLower(string(t)) == key || t.Slug() == key {
			return t, nil
		}
	}

	if t, ok := documentTypeAliases[strings.ReplaceAll(key, "-", " ")]; ok {
		return t, nil
	}

	return "", ErrInvalidDocumentType
}

func (t DocumentType) Valid() bool {
	for _, v := range DocumentTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (t DocumentType) Slug() string {
	switch t {
	case DocumentTypeBarangayClearance:
		return "barangay-clearance"
	case DocumentTypeBusinessClearance:
		return "business-clearance"
	case DocumentTypeResidency:
		return "residency"
	case DocumentTypeIndigency:
		return "indigency"
	case DocumentTypeGoodMoral:
		return "good-moral"
	}
	return ""
}

// ReferencePrefix is the leading segment of a document reference number.
func (t DocumentType) ReferencePrefix() string {
	switch t {
	case DocumentTypeIndigency:
		return "COI"
	case DocumentTypeBusinessClearance:
		return "BIZ"
	case DocumentTypeResidency:
		return "COR"
	case DocumentTypeGoodMoral:
		return "COM"
	}
	return "BC"
}

// ShortName is used in download filenames.
func (t DocumentType) ShortName() string {
	switch t {
	case DocumentTypeBusinessClearance:
		return "BusinessClearance"
	case DocumentTypeResidency:
		return "CertificateOfResidency"
	case DocumentTypeIndigency:
		return "CertificateOfIndigency"
	case DocumentTypeGoodMoral:
		return "GoodMoralCharacter"
	}
	return "BarangayClearance"
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	st := RequestStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

type Request struct {
	ID                 int64         `db:"id" json:"id"`
	UserID             string        `db:"user_id" json:"userId"`
	Type               DocumentType  `db:"type" json:"type"`
	Status             RequestStatus `db:"status" json:"status"`
	FirstName          string        `db:"first_name" json:"firstName"`
	MiddleInitial      *string       `db:"middle_initial" json:"middleInitial"`
	LastName           string        `db:"last_name" json:"lastName"`
	Age                int           `db:"age" json:"age"`
	Address            string        `db:"address" json:"address"`
	Barangay           *string       `db:"barangay" json:"barangay"`
	Purpose            *string       `db:"purpose" json:"purpose"`
	BusinessName       *string       `db:"business_name" json:"businessName"`
	ResidencyDuration  *string       `db:"residency_duration" json:"residencyDuration"`
	CharacterReference *string       `db:"character_reference" json:"characterReference"`
	ReviewedBy         *string       `db:"reviewed_by" json:"reviewedBy"`
	ReviewedAt         *time.Time    `db:"reviewed_at" json:"reviewedAt"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updatedAt"`
}

func (r *Request) FullName() string {
	parts := []string{r.FirstName}
	if r.MiddleInitial != nil && strings.TrimSpace(*r.MiddleInitial) != "" {
		mi := strings.TrimSuffix(strings.TrimSpace(*r.MiddleInitial), ".")
		parts = append(parts, mi+".")
	}
	parts = append(parts, r.LastName)
	return strings.Join(parts, " ")
}

func (r *Request) Deletable() bool {
	return r.Status == RequestStatusRejected
}

// RequestForm is the citizen application form shared by every document type.
type RequestForm struct {
	FirstName          string `form:"first_name" validate:"required,max=100"`
	MiddleInitial      string `form:"middle_initial" validate:"max=5"`
	LastName           string `form:"last_name" validate:"required,max=100"`
	Age                string `form:"age" validate:"required"`
	Address            string `form:"address" validate:"required,max=255"`
	Barangay           string `form:"barangay" validate:"max=100"`
	Purpose            string `form:"purpose" validate:"max=500"`
	BusinessName       string `form:"business_name" validate:"max=200"`
	ResidencyDuration  string `form:"residency_duration" validate:"max=100"`
	CharacterReference string `form:"character_reference" validate:"max=200"`
}

type RequestFilter struct {
	UserID string
	Status RequestStatus
	Type   DocumentType
	Limit  uint64
}

type RequestCounts struct {
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}

func (c RequestCounts) Total() int {
	return c.Pending + c.Approved + c.Rejected
}
