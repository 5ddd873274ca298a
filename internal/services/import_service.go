package services

import (
	"context"
	"io"

	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/ofximport"
)

const importBatchSize = 100

// importService turns bank statements into transactions.
type importService struct {
	db     *gorm.DB
	parser *ofximport.Parser
}

// NewImportService creates a new ImportServicer. scale is the number of
// decimal places statement amounts are shifted by.
func NewImportService(db *gorm.DB, scale int32) ImportServicer {
	return &importService{db: db, parser: ofximport.NewParser(scale)}
}

// ImportStatement imports an OFX/QFX statement into an account. Lines whose
// bank ID was already imported into that account are skipped.
func (s *importService) ImportStatement(ctx context.Context, userID, accountID string, r io.Reader) (*ImportResult, error) {
	db := s.db.WithContext(ctx)

	account, err := findAccount(db, userID, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := s.parser.Parse(ctx, r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidStatement, err)
	}

	var known []string
	if err := db.Model(&models.Transaction{}).
		Where("account_id = ? AND external_id IS NOT NULL", account.ID).
		Pluck("external_id", &known).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	seen := make(map[string]bool, len(known)+len(entries))
	for _, id := range known {
		seen[id] = true
	}

	result := &ImportResult{}
	var rows []models.Transaction
	for _, e := range entries {
		if e.ExternalID != "" {
			if seen[e.ExternalID] {
				result.Skipped++
				continue
			}
			seen[e.ExternalID] = true
		}

		row := models.Transaction{
			UserID:    userID,
			AccountID: account.ID,
			Type:      e.Type,
			Amount:    e.Amount,
			Date:      e.Date,
		}
		if e.ExternalID != "" {
			externalID := e.ExternalID
			row.ExternalID = &externalID
		}
		if e.Description != "" {
			description := e.Description
			row.Description = &description
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := db.CreateInBatches(&rows, importBatchSize).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	result.Imported = len(rows)

	logger.Get().Infow("statement imported",
		"user_id", userID,
		"account_id", account.ID,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}
