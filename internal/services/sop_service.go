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
	ErrSOPNotFound   = errors.New("SOP not found")
	ErrSOPTitleEmpty = errors.New("SOP title cannot be empty")
	ErrSOPLinkEmpty  = errors.New("SOP link cannot be empty")
)

// SOPService handles SOP business logic
type SOPService struct {
	sopRepo repository.SOPRepository
}

// NewSOPService creates a new SOPService
func NewSOPService(sopRepo repository.SOPRepository) *SOPService {
	return &SOPService{sopRepo: sopRepo}
}

// CreateSOPInput represents input for creating an SOP
type CreateSOPInput struct {
	Title string
	Link  string
}

// CreateSOP creates a new SOP
func (s *SOPService) CreateSOP(input CreateSOPInput) (*models.SOP, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrSOPTitleEmpty
	}
	link := strings.TrimSpace(input.Link)
	if link == "" {
		return nil, ErrSOPLinkEmpty
	}

	sop := &models.SOP{
		Title: title,
		Link:  link,
	}
	if err := s.sopRepo.Create(sop); err != nil {
		return nil, fmt.Errorf("failed to create SOP: %w", err)
	}

	return sop, nil
}

// UpdateSOPInput represents input for updating an SOP
type UpdateSOPInput struct {
	Title *string
	Link  *string
}

// UpdateSOP updates an SOP
func (s *SOPService) UpdateSOP(sopID uint64, input UpdateSOPInput) (*models.SOP, error) {
	sop, err := s.sopRepo.FindByID(sopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSOPNotFound
		}
		return nil, fmt.Errorf("failed to find SOP: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrSOPTitleEmpty
		}
		sop.Title = title
	}
	if input.Link != nil {
		link := strings.TrimSpace(*input.Link)
		if link == "" {
			return nil, ErrSOPLinkEmpty
		}
		sop.Link = link
	}

	if err := s.sopRepo.Update(sop); err != nil {
		return nil, fmt.Errorf("failed to update SOP: %w", err)
	}

	return sop, nil
}

// GetSOP returns an SOP by ID
func (s *SOPService) GetSOP(sopID uint64) (*models.SOP, error) {
	sop, err := s.sopRepo.FindByID(sopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSOPNotFound
		}
		return nil, fmt.Errorf("failed to find SOP: %w", err)
	}
	return sop, nil
}

// ListSOPs returns all SOPs
func (s *SOPService) ListSOPs() ([]models.SOP, error) {
	sops, err := s.sopRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list SOPs: %w", err)
	}
	return sops, nil
}
