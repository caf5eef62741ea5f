package leave

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// Profile is the employee data printed on every request
type Profile struct {
	Name          string `json:"name"`
	PersonnelID   string `json:"personalNummer"`
	Department    string `json:"abteilung"`
	SignatureFile string `json:"signature,omitempty"`
	CountWeekends bool   `json:"countWeekends,omitempty"`
}

// Policy returns the weekend policy of the profile
func (p Profile) Policy() calendar.WeekendPolicy {
	return calendar.WeekendPolicy{CountWeekends: p.CountWeekends}
}

// Request is the leave-request export record handed to the document
// generator and to the manager. Field names match the exchange files.
type Request struct {
	RequestID   string       `json:"requestId"`
	Name        string       `json:"name"`
	PersonnelID string       `json:"personalNummer"`
	Department  string       `json:"abteilung"`
	DateFrom    string       `json:"dateFrom"`
	DateTo      string       `json:"dateTo"`
	Type        VacationType `json:"type"`
	WorkingDays float64      `json:"workingDays"`
	Reason      string       `json:"grund"`
	Remark      string       `json:"zusatzBemerkung"`
	Signature   string       `json:"signature"`
	CreatedDate time.Time    `json:"createdDate"`
}

// RequestInput is what the caller supplies for a new request
type RequestInput struct {
	Start  time.Time
	End    time.Time
	Type   VacationType
	Reason string
	Remark string
}

// NewRequest validates in and builds the export record. The working-day
// count comes from acc so the document and the calendar never disagree.
func NewRequest(profile Profile, acc *calendar.Accountant, in RequestInput, now time.Time) (*Request, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, errors.New("profile name is required")
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, in.Type)
	}
	if in.Type.RequiresReason() && strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: type %d", ErrReasonRequired, in.Type)
	}

	days, err := acc.CountChargeableDays(in.Start, in.End, profile.Policy())
	if err != nil {
		return nil, err
	}

	return &Request{
		RequestID:   uuid.NewString(),
		Name:        profile.Name,
		PersonnelID: profile.PersonnelID,
		Department:  profile.Department,
		DateFrom:    dateutil.FormatDate(in.Start),
		DateTo:      dateutil.FormatDate(in.End),
		Type:        in.Type,
		WorkingDays: days,
		Reason:      strings.TrimSpace(in.Reason),
		Remark:      strings.TrimSpace(in.Remark),
		Signature:   profile.SignatureFile,
		CreatedDate: now.UTC(),
	}, nil
}

// Booking converts the request into a calendar booking. Types 5 and 6 carry
// their reason as remark, all others the free-text remark.
func (r *Request) Booking(policy calendar.WeekendPolicy) (Booking, error) {
	start, err := dateutil.ParseDate(r.DateFrom)
	if err != nil {
		return Booking{}, fmt.Errorf("dateFrom: %w", err)
	}
	end, err := dateutil.ParseDate(r.DateTo)
	if err != nil {
		return Booking{}, fmt.Errorf("dateTo: %w", err)
	}

	remark := r.Remark
	if r.Type.RequiresReason() {
		remark = r.Reason
	}
	return Booking{Start: start, End: end, Type: r.Type, Remark: remark, Policy: policy}, nil
}

// Status is a manager decision
type Status string

const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is the manager's answer to a request
type Decision struct {
	RequestID        string    `json:"requestId"`
	Status           Status    `json:"status"`
	RejectionReason  string    `json:"rejectionReason"`
	ManagerSignature string    `json:"managerSignature,omitempty"`
	ProcessedDate    time.Time `json:"processedDate"`
	OriginalRequest  *Request  `json:"originalRequest"`
}

// Decide builds the decision record for req
func Decide(req *Request, status Status, reason, managerSignature string, now time.Time) (*Decision, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}
	switch status {
	case StatusApproved:
		reason = ""
	case StatusRejected:
	default:
		return nil, fmt.Errorf("unknown decision status %q", status)
	}

	return &Decision{
		RequestID:        req.RequestID,
		Status:           status,
		RejectionReason:  strings.TrimSpace(reason),
		ManagerSignature: managerSignature,
		ProcessedDate:    now.UTC(),
		OriginalRequest:  req,
	}, nil
}

// ApplyDecision brings snap in line with d: an approved request is booked,
// a rejected one is removed from the calendar
func ApplyDecision(snap *annotation.Snapshot, acc *calendar.Accountant, d *Decision, policy calendar.WeekendPolicy) error {
	if d.OriginalRequest == nil {
		return errors.New("decision carries no original request")
	}
	b, err := d.OriginalRequest.Booking(policy)
	if err != nil {
		return err
	}

	switch d.Status {
	case StatusApproved:
		_, err = AddRange(snap, acc, b)
		return err
	case StatusRejected:
		_, err = DeleteRange(snap, b.Start, b.End)
		return err
	}
	return fmt.Errorf("unknown decision status %q", d.Status)
}
