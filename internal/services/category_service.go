package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finledger/internal/errors"
	"finledger/internal/models"
	"finledger/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category, optionally nested under a parent of
// the same type.
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	switch categoryType {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported category type")
	}

	if parentID != nil {
		parent, err := s.GetCategoryByID(userID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.Type != categoryType {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "parent category must have the same type")
		}
	}

	category := &models.Category{
		UserID:   userID,
		Name:     name,
		Type:     categoryType,
		Icon:     icon,
		Color:    color,
		ParentID: parentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories retrieves a paginated flat list of categories for a user.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryTree returns the user's root categories with their children
// preloaded two levels deep.
func (s *categoryService) GetCategoryTree(userID string) ([]models.Category, error) {
	var roots []models.Category
	if err := s.db.Where("user_id = ? AND parent_id IS NULL", userID).
		Preload("Children").
		Preload("Children.Children").
		Order("name ASC").
		Find(&roots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return roots, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates a category's attributes and, when parentID is
// given, re-parents it after checking the move does not create a cycle.
func (s *categoryService) UpdateCategory(userID, categoryID string, name, icon, color string, parentID *string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if parentID != nil {
		if *parentID == "" {
			updates["parent_id"] = nil
		} else {
			if *parentID == category.ID {
				return nil, apperrors.ErrSelfParentCategory
			}
			parent, err := s.GetCategoryByID(userID, *parentID)
			if err != nil {
				return nil, err
			}
			if parent.Type != category.Type {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "parent category must have the same type")
			}
			if err := s.checkCycle(userID, category.ID, parent); err != nil {
				return nil, err
			}
			updates["parent_id"] = parent.ID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", category.ID).First(category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// checkCycle walks the ancestor chain of the proposed parent. If the
// category being moved appears among the ancestors the move would close a
// cycle. The visited set terminates the walk even if the stored chain is
// already corrupt.
func (s *categoryService) checkCycle(userID, categoryID string, parent *models.Category) error {
	visited := map[string]bool{parent.ID: true}
	current := parent
	for current.ParentID != nil {
		ancestorID := *current.ParentID
		if ancestorID == categoryID {
			return apperrors.ErrCategoryCycle
		}
		if visited[ancestorID] {
			return apperrors.ErrCategoryCycle
		}
		visited[ancestorID] = true

		ancestor, err := s.GetCategoryByID(userID, ancestorID)
		if err != nil {
			return err
		}
		current = ancestor
	}
	return nil
}

// DeleteCategory soft-deletes a category. Categories with children must be
// emptied or re-parented first; transactions referencing the category keep
// the reference and report as uncategorized once it is gone.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).
		Where("parent_id = ?", category.ID).
		Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
