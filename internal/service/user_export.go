package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/repository"
)

const exportSheet = "Utilisateurs"

var exportHeader = []any{
	"ID", "Code", "Prénom", "Nom", "Email", "Téléphone", "WhatsApp", "Âge",
	"Inscrit le", "Dernière connexion", "Présent", "Statut du test",
	"Étapes complétées", "Profil dominant",
}

// ExportUsers writes every non-staff user matching search to an XLSX
// workbook, using the same rows as the listing.
func (s *adminUserService) ExportUsers(ctx context.Context, search string) ([]byte, error) {
	users, _, err := s.users.List(ctx, repository.UserFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de l'export des utilisateurs", err)
	}
	rows, err := s.summaries(ctx, users)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors de l'export des utilisateurs", err)
	}

	content, err := writeUserSheet(rows)
	if err != nil {
		log.Error().Err(err).Int("rows", len(rows)).Msg("ExportUsers: workbook failed")
		return nil, apperr.Unexpected("Erreur lors de l'export des utilisateurs", err)
	}
	return content, nil
}

func writeUserSheet(rows []dto.UserSummaryDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("ExportUsers: close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last+"1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", last, 18); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.ID, r.UserCode, text(r.FirstName), text(r.LastName), r.Email,
			text(r.Telephone), text(r.WhatsappNumber), age(r.Age),
			r.CreatedAt.Format(time.DateTime), timestamp(r.LastLoginAt),
			yesNo(r.IsPresent), r.TestStatus,
			strings.Join(r.CompletedSteps, ", "), text(r.DominantProfile),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func age(n *int) any {
	if n == nil {
		return ""
	}
	return *n
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateTime)
}

func yesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}
