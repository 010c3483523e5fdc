package models

import (
	"strings"
	"time"

	dErrors "assistflow/pkg/domain-errors"
)

// MaxFileSize is the largest upload accepted (10 MiB).
const MaxFileSize = 10 << 20

// Category splits documents for the aggregation rule.
type Category string

const (
	CategoryID    Category = "id_document"
	CategoryOther Category = "other_document"
)

// Status is the review state of a document.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"

	// StatusWithdrawn marks a document the applicant is removing. It is
	// only ever visible between the claiming write and the delete.
	StatusWithdrawn Status = "withdrawn"
)

// Decision is a reviewer verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var typesByCategory = map[Category]map[string]struct{}{
	CategoryID: {
		"drivers_license": {},
		"state_id":        {},
		"passport":        {},
		"military_id":     {},
	},
	CategoryOther: {
		"proof_of_income":         {},
		"lease_agreement":         {},
		"utility_bills":           {},
		"bank_statements":         {},
		"eviction_notice":         {},
		"employment_verification": {},
		"social_security":         {},
		"medical_bills":           {},
		"other":                   {},
	},
}

var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"application/pdf": {},
}

// Document is one uploaded file and its review outcome.
//
// Invariants:
//   - RejectionReason is set iff Status is rejected
//   - a decided document never changes again; resubmission creates a new
//     Document whose ResubmissionOf points at the rejected one
type Document struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Category        Category   `json:"category"`
	Type            string     `json:"type"`
	Description     string     `json:"description,omitempty"`
	FileRef         string     `json:"fileRef"`
	FileName        string     `json:"fileName"`
	FileSize        int64      `json:"fileSize"`
	ContentType     string     `json:"contentType"`
	Status          Status     `json:"status"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	UploadDate      time.Time  `json:"uploadDate"`
	ReviewDate      *time.Time `json:"reviewDate,omitempty"`
	ReviewedBy      string     `json:"reviewedBy,omitempty"`
	ResubmissionOf  *string    `json:"resubmissionOf,omitempty"`

	Version int64 `json:"-"`
}

// Upload is the applicant's submission.
type Upload struct {
	Category       Category
	Type           string
	Description    string
	FileRef        string
	FileName       string
	FileSize       int64
	ContentType    string
	ResubmissionOf string
}

// Validate checks category, type and file constraints.
func (u Upload) Validate() error {
	types, ok := typesByCategory[u.Category]
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "category must be id_document or other_document")
	}
	if _, ok := types[u.Type]; !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "document type "+u.Type+" is not valid for "+string(u.Category))
	}
	if strings.TrimSpace(u.FileRef) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "file reference is required")
	}
	if u.FileSize <= 0 || u.FileSize > MaxFileSize {
		return dErrors.New(dErrors.CodeInvalidInput, "file size must be between 1 byte and 10MB")
	}
	if _, ok := allowedContentTypes[strings.ToLower(u.ContentType)]; !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "only JPEG, PNG, and PDF files are allowed")
	}
	return nil
}

// NewDocument builds a pending document from a validated upload.
func NewDocument(id, email string, u Upload, now time.Time) (*Document, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	d := &Document{
		ID:          id,
		Email:       email,
		Category:    u.Category,
		Type:        u.Type,
		Description: strings.TrimSpace(u.Description),
		FileRef:     u.FileRef,
		FileName:    u.FileName,
		FileSize:    u.FileSize,
		ContentType: strings.ToLower(u.ContentType),
		Status:      StatusPendingReview,
		UploadDate:  now,
	}
	if u.ResubmissionOf != "" {
		ref := u.ResubmissionOf
		d.ResubmissionOf = &ref
	}
	return d, nil
}

func (d *Document) IsPending() bool {
	return d.Status == StatusPendingReview
}

// CanDecide checks the document is still awaiting a decision and the
// decision is well formed.
func (d *Document) CanDecide(decision Decision, reason string) error {
	switch decision {
	case DecisionApprove:
	case DecisionReject:
		if strings.TrimSpace(reason) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "a rejection reason is required")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "decision must be approve or reject")
	}
	if !d.IsPending() {
		return dErrors.New(dErrors.CodeConflict, "document has already been decided")
	}
	return nil
}

// CanWithdraw checks the applicant may remove the document.
func (d *Document) CanWithdraw() error {
	if !d.IsPending() {
		return dErrors.New(dErrors.CodeConflict, "only documents awaiting review can be removed")
	}
	return nil
}

// ApplyDecision records the verdict. Call CanDecide first.
func (d *Document) ApplyDecision(decision Decision, reason, reviewer string, now time.Time) {
	if decision == DecisionApprove {
		d.Status = StatusApproved
		d.RejectionReason = nil
	} else {
		d.Status = StatusRejected
		r := strings.TrimSpace(reason)
		d.RejectionReason = &r
	}
	d.ReviewDate = &now
	d.ReviewedBy = reviewer
}

// QueueEntry is the reviewer queue projection of a pending document.
type QueueEntry struct {
	DocumentID  string    `json:"documentId"`
	Email       string    `json:"email"`
	Category    Category  `json:"category"`
	Type        string    `json:"type"`
	FileName    string    `json:"fileName"`
	UploadDate  time.Time `json:"uploadDate"`
	Resubmitted bool      `json:"resubmitted"`
}

// NewQueueEntry projects d for the review queue.
func NewQueueEntry(d *Document) QueueEntry {
	return QueueEntry{
		DocumentID:  d.ID,
		Email:       d.Email,
		Category:    d.Category,
		Type:        d.Type,
		FileName:    d.FileName,
		UploadDate:  d.UploadDate,
		Resubmitted: d.ResubmissionOf != nil,
	}
}

// MeetsApprovalRule reports whether the approved documents contain at least
// one id document and at least two other documents.
func MeetsApprovalRule(docs []*Document) bool {
	var ids, others int
	for _, d := range docs {
		if d.Status != StatusApproved {
			continue
		}
		switch d.Category {
		case CategoryID:
			ids++
		case CategoryOther:
			others++
		}
	}
	return ids >= 1 && others >= 2
}
