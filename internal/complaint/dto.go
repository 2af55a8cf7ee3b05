package complaint

import "errors"

// CreateComplaintDTO represents the request payload for registering a complaint
type CreateComplaintDTO struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Location    string `json:"location"`
}

func (dto CreateComplaintDTO) Validate() error {
	if dto.Title == "" {
		return errors.New("title is required")
	}
	if len(dto.Title) > 100 {
		return errors.New("title must be at most 100 characters")
	}
	if dto.Category == "" {
		return errors.New("category is required")
	}
	if dto.Description == "" {
		return errors.New("description is required")
	}
	if dto.Location == "" {
		return errors.New("location is required")
	}
	if dto.Priority != "" && !ValidPriority(dto.Priority) {
		return errors.New("priority must be one of Low, Medium, High")
	}
	return nil
}

// UpdateComplaintDTO carries an author's edit of a still-pending complaint.
// Empty fields are left unchanged.
type UpdateComplaintDTO struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Location    string `json:"location"`
}

func (dto UpdateComplaintDTO) Validate() error {
	if len(dto.Title) > 100 {
		return errors.New("title must be at most 100 characters")
	}
	if dto.Priority != "" && !ValidPriority(dto.Priority) {
		return errors.New("priority must be one of Low, Medium, High")
	}
	return nil
}

// UpdateStatusDTO is a staff member's status change on an assigned complaint.
type UpdateStatusDTO struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (dto UpdateStatusDTO) Validate() error {
	if dto.Status == "" {
		return errors.New("status is required")
	}
	if !ValidStatus(dto.Status) {
		return errors.New("unknown status")
	}
	return nil
}

// AssignDTO selects the staff member a complaint is handed to.
type AssignDTO struct {
	StaffID int64 `json:"staff_id"`
}

func (dto AssignDTO) Validate() error {
	if dto.StaffID <= 0 {
		return errors.New("staff_id is required")
	}
	return nil
}

// DeleteDTO carries the explicit confirmation flag for soft deletion.
type DeleteDTO struct {
	Confirm bool `json:"confirm"`
}
