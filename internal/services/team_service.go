package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrTeamNameEmpty   = errors.New("team name cannot be empty")
	ErrManagerNotFound = errors.New("manager user does not exist")
)

// TeamService handles team business logic
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// CreateTeamInput represents input for creating a team
type CreateTeamInput struct {
	Name      string
	ManagerID *uint64
}

// CreateTeam creates a new team, validating the manager if given
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameEmpty
	}

	if input.ManagerID != nil {
		if err := s.ensureUserExists(*input.ManagerID); err != nil {
			return nil, err
		}
	}

	team := &models.Team{
		Name:      name,
		ManagerID: input.ManagerID,
	}

	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// UpdateTeamInput represents input for updating a team
type UpdateTeamInput struct {
	Name      *string
	ManagerID *uint64
}

// UpdateTeam updates a team
func (s *TeamService) UpdateTeam(teamID uint64, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameEmpty
		}
		team.Name = name
	}
	if input.ManagerID != nil {
		if err := s.ensureUserExists(*input.ManagerID); err != nil {
			return nil, err
		}
		team.ManagerID = input.ManagerID
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// GetTeam returns a team by ID
func (s *TeamService) GetTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// ListTeams returns all teams
func (s *TeamService) ListTeams() ([]models.Team, error) {
	teams, err := s.teamRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// ListMembers returns a team's active members
func (s *TeamService) ListMembers(teamID uint64) ([]models.User, error) {
	if _, err := s.GetTeam(teamID); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

func (s *TeamService) ensureUserExists(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrManagerNotFound
		}
		return fmt.Errorf("failed to verify manager: %w", err)
	}
	return nil
}
