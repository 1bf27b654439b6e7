package dto

import (
	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	TeamID   *uint64 `json:"team_id,omitempty"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID      uint64   `json:"id"`
	Name    string   `json:"name"`
	Manager *UserDTO `json:"manager,omitempty"`
}

// SOPDTO represents a standard operating procedure in API responses
type SOPDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		TeamID:   user.TeamID,
	}
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	dto := TeamDTO{
		ID:   team.ID,
		Name: team.Name,
	}
	if team.Manager != nil {
		manager := ToUserDTO(*team.Manager)
		dto.Manager = &manager
	}
	return dto
}

// ToSOPDTO converts an SOP model to SOPDTO
func ToSOPDTO(sop models.SOP) SOPDTO {
	return SOPDTO{
		ID:    sop.ID,
		Title: sop.Title,
		Link:  sop.Link,
	}
}
