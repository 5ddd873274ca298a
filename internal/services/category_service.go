package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/stats"
)

// DefaultCategory describes a category created by SeedDefaultCategories.
type DefaultCategory struct {
	Name  string
	Type  models.CategoryType
	Icon  string
	Color string
}

// DefaultCategories is the starter set offered to new users.
var DefaultCategories = []DefaultCategory{
	{Name: "Food & Dining", Type: models.CategoryTypeExpense, Icon: "🍔", Color: "#ef4444"},
	{Name: "Transportation", Type: models.CategoryTypeExpense, Icon: "🚗", Color: "#f97316"},
	{Name: "Shopping", Type: models.CategoryTypeExpense, Icon: "🛍️", Color: "#eab308"},
	{Name: "Bills & Utilities", Type: models.CategoryTypeExpense, Icon: "💡", Color: "#22c55e"},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Icon: "🎬", Color: "#06b6d4"},
	{Name: "Healthcare", Type: models.CategoryTypeExpense, Icon: "💊", Color: "#3b82f6"},
	{Name: "Education", Type: models.CategoryTypeExpense, Icon: "📚", Color: "#8b5cf6"},
	{Name: "Other", Type: models.CategoryTypeExpense, Icon: "📦", Color: "#6b7280"},
	{Name: "Salary", Type: models.CategoryTypeIncome, Icon: "💰", Color: "#10b981"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Icon: "💻", Color: "#14b8a6"},
	{Name: "Investment", Type: models.CategoryTypeIncome, Icon: "📈", Color: "#6366f1"},
	{Name: "Other Income", Type: models.CategoryTypeIncome, Icon: "💵", Color: "#84cc16"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func validCategoryType(t models.CategoryType) bool {
	return t == models.CategoryTypeIncome || t == models.CategoryTypeExpense
}

// CreateCategory creates a new category. A budget limit on an income category is dropped.
func (s *categoryService) CreateCategory(ctx context.Context, userID string, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !validCategoryType(in.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	if in.BudgetLimit != nil && *in.BudgetLimit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget limit must be greater than zero")
	}

	db := s.db.WithContext(ctx)
	if err := ensureUniqueCategory(db, userID, name, in.Type, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   in.Type,
		Icon:   orDefault(in.Icon, stats.DefaultIcon),
		Color:  orDefault(in.Color, stats.DefaultColor),
	}
	if in.Type == models.CategoryTypeExpense {
		category.BudgetLimit = in.BudgetLimit
	}

	if err := db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories lists a user's categories ordered by name, optionally by type.
func (s *categoryService) GetUserCategories(ctx context.Context, userID string, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if categoryType != nil {
		if !validCategoryType(*categoryType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
		}
		q = q.Where("type = ?", *categoryType)
	}

	categories := []models.Category{}
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	return findCategory(s.db.WithContext(ctx), userID, categoryID)
}

// UpdateCategory updates a category's name, icon or color. The type is fixed
// once transactions may reference the category.
func (s *categoryService) UpdateCategory(ctx context.Context, userID, categoryID string, in CategoryUpdate) (*models.Category, error) {
	db := s.db.WithContext(ctx)

	category, err := findCategory(db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		if err := ensureUniqueCategory(db, userID, name, category.Type, category.ID); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if in.Icon != nil {
		category.Icon = orDefault(*in.Icon, stats.DefaultIcon)
	}
	if in.Color != nil {
		category.Color = orDefault(*in.Color, stats.DefaultColor)
	}

	if err := db.Save(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// DeleteCategory deletes a category. Its transactions become uncategorized.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	db := s.db.WithContext(ctx)

	category, err := findCategory(db, userID, categoryID)
	if err != nil {
		return err
	}

	var uncategorized int64
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("category_id = ? AND user_id = ?", category.ID, userID).
			Update("category_id", nil)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		uncategorized = res.RowsAffected

		if err := tx.Where("category_id = ?", category.ID).Delete(&models.BudgetAlert{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("category deleted",
		"user_id", userID,
		"category_id", category.ID,
		"transactions_uncategorized", uncategorized,
	)
	return nil
}

// SeedDefaultCategories creates the default categories the user does not
// have yet and returns the ones it created.
func (s *categoryService) SeedDefaultCategories(ctx context.Context, userID string) ([]models.Category, error) {
	db := s.db.WithContext(ctx)

	var existing []models.Category
	if err := db.Select("name", "type").Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[categoryKey(c.Name, c.Type)] = true
	}

	created := []models.Category{}
	for _, d := range DefaultCategories {
		if have[categoryKey(d.Name, d.Type)] {
			continue
		}
		created = append(created, models.Category{
			UserID: userID,
			Name:   d.Name,
			Type:   d.Type,
			Icon:   d.Icon,
			Color:  d.Color,
		})
	}
	if len(created) == 0 {
		return created, nil
	}

	if err := db.Create(&created).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return created, nil
}

// loadBudgetCategories lists the user's expense categories that carry a budget limit.
func loadBudgetCategories(db *gorm.DB, userID string) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("user_id = ? AND type = ? AND budget_limit IS NOT NULL", userID, models.CategoryTypeExpense).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ensureUniqueCategory rejects a second category with the same name and type,
// ignoring case. excludeID skips the category being renamed.
func ensureUniqueCategory(db *gorm.DB, userID, name string, categoryType models.CategoryType, excludeID string) error {
	q := db.Model(&models.Category{}).
		Where("user_id = ? AND type = ? AND LOWER(name) = LOWER(?)", userID, categoryType, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

func categoryKey(name string, t models.CategoryType) string {
	return string(t) + "/" + strings.ToLower(name)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
