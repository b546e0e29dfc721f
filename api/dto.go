/*
dto.go - Request and response shapes for the action endpoint

PURPOSE:
  Defines the JSON structures travelling over POST /api. These types
  decouple the wire contract from the domain model; handlers translate
  between the two.

ENVELOPE:
  Every request is {action, payload}. Every response carries
  status: "success" or "error"; error responses add a message.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"encoding/json"

	"github.com/muster/personnel-engine/muster"
)

// Envelope is the request wrapper for every action.
type Envelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO is a login account without credential material.
type UserDTO struct {
	Username   string `json:"username"`
	Rank       string `json:"rank"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

func toUserDTO(u muster.User) UserDTO {
	return UserDTO{
		Username:   u.Username,
		Rank:       u.Rank,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Position:   u.Position,
		Department: u.Department,
		Role:       u.Role,
	}
}

// UserRequest carries the add_user / update_user payload. Password is
// required on add, optional on update.
type UserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Rank       string `json:"rank"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

func (r UserRequest) user() muster.User {
	return muster.User{
		Username:   r.Username,
		Rank:       r.Rank,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Position:   r.Position,
		Department: r.Department,
		Role:       r.Role,
	}
}

type DeleteUserRequest struct {
	Username string `json:"username"`
}

// =============================================================================
// PERSONNEL
// =============================================================================

// ListRequest is the shared paging payload for listings.
type ListRequest struct {
	Department string `json:"department"`
	SearchTerm string `json:"search_term"`
	Page       int    `json:"page"`
	FetchAll   bool   `json:"fetch_all"`
}

type PersonRequest struct {
	ID         string `json:"id"`
	Rank       string `json:"rank"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Specialty  string `json:"specialty"`
	Department string `json:"department"`
}

func (r PersonRequest) person() muster.Person {
	return muster.Person{
		ID:         r.ID,
		Rank:       r.Rank,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Position:   r.Position,
		Specialty:  r.Specialty,
		Department: r.Department,
	}
}

type PersonIDRequest struct {
	PersonnelID string `json:"personnel_id"`
}

type ImportPersonnelRequest struct {
	Personnel []PersonRequest `json:"personnel"`
}

// =============================================================================
// REPORTS
// =============================================================================

type SubmitReportRequest struct {
	Department string              `json:"department"`
	ReportDate string              `json:"report_date"` // daily only
	Items      []muster.ReportItem `json:"items"`
}

type DepartmentRequest struct {
	Department string `json:"department"`
}

type ReportIDRequest struct {
	ReportID string `json:"report_id"`
}

type ArchiveRequest struct {
	Reports []ArchiveReportEntry `json:"reports"`
}

type ArchiveReportEntry struct {
	Date        string              `json:"date"`
	Department  string              `json:"department"`
	SubmittedBy string              `json:"submitted_by"`
	Timestamp   string              `json:"timestamp"`
	Items       []muster.ReportItem `json:"items"`
}
