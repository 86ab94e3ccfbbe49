package service

import (
	"context"

	"kraisys/internal/dto"
	"kraisys/internal/model"
	"kraisys/internal/repository"

	"gorm.io/gorm"
)

// ModelService owns the shoe-model lifecycle. A model and its base
// specification (is_default=true) are born in the same transaction - a model
// without a base record cannot exist, which is what lets variant creation
// rely on the base always being there.
type ModelService interface {
	Create(ctx context.Context, req dto.CreateModelRequest) (*dto.ModelResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ModelResponse, error)
	List(ctx context.Context, filter dto.ModelFilter) (*dto.ModelListResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateModelRequest) (*dto.ModelResponse, error)
	Deactivate(ctx context.Context, id int64) error
}

type modelService struct {
	repo     repository.ModelRepository
	specRepo repository.SpecificationRepository
}

func NewModelService(repo repository.ModelRepository, specRepo repository.SpecificationRepository) ModelService {
	return &modelService{repo: repo, specRepo: specRepo}
}

func (s *modelService) Create(ctx context.Context, req dto.CreateModelRequest) (*dto.ModelResponse, error) {
	sizeMin, sizeMax := req.SizeMin, req.SizeMax
	if sizeMin == 0 {
		sizeMin = 36
	}
	if sizeMax == 0 {
		sizeMax = 46
	}
	if sizeMax < sizeMin {
		return nil, &ValidationError{Fields: map[string]string{
			"size_max": "size range maximum is below its minimum",
		}}
	}

	m := &model.Model{
		Article:  req.Article,
		Name:     req.Name,
		LastCode: req.LastCode,
		LastType: req.LastType,
		SizeMin:  sizeMin,
		SizeMax:  sizeMax,
		IsActive: true,
	}

	var base model.Specification
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, m); err != nil {
			return err
		}
		base = model.Specification{
			ModelID:   m.ID,
			Version:   1,
			IsDefault: true,
			IsActive:  true,
		}
		return s.specRepo.CreateTx(tx, &base)
	})
	if txErr != nil {
		return nil, &PersistenceError{Op: "create model", Err: txErr}
	}

	resp := modelToResponse(m)
	resp.BaseSpecID = base.ID
	return resp, nil
}

func (s *modelService) GetByID(ctx context.Context, id int64) (*dto.ModelResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrModelNotFound
	}
	resp := modelToResponse(m)
	if base, err := s.specRepo.FindBase(ctx, id); err == nil {
		resp.BaseSpecID = base.ID
	}
	return resp, nil
}

func (s *modelService) List(ctx context.Context, filter dto.ModelFilter) (*dto.ModelListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	models, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ModelResponse, len(models))
	for i, m := range models {
		items[i] = *modelToResponse(&m)
	}
	return &dto.ModelListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *modelService) Update(ctx context.Context, id int64, req dto.UpdateModelRequest) (*dto.ModelResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrModelNotFound
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.LastCode != nil {
		m.LastCode = *req.LastCode
	}
	if req.LastType != nil {
		m.LastType = *req.LastType
	}
	if req.SizeMin != nil {
		m.SizeMin = *req.SizeMin
	}
	if req.SizeMax != nil {
		m.SizeMax = *req.SizeMax
	}
	if m.SizeMax < m.SizeMin {
		return nil, &ValidationError{Fields: map[string]string{
			"size_max": "size range maximum is below its minimum",
		}}
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, &PersistenceError{Op: "update model", Err: err}
	}
	return modelToResponse(m), nil
}

// Deactivate soft-deletes the model. Its specifications stay in place:
// variants are never deleted automatically.
func (s *modelService) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrModelNotFound
	}
	return s.repo.SoftDelete(ctx, id)
}

func modelToResponse(m *model.Model) *dto.ModelResponse {
	return &dto.ModelResponse{
		ID:       m.ID,
		Article:  m.Article,
		Name:     m.Name,
		LastCode: m.LastCode,
		LastType: m.LastType,
		SizeMin:  m.SizeMin,
		SizeMax:  m.SizeMax,
		IsActive: m.IsActive,
	}
}
