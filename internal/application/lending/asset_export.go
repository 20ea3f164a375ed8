package lending

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	exportSheetName = "Assets"
	exportPageSize  = 500
)

// ExportColumns is the header row of the asset export workbook
var ExportColumns = []string{
	"Code", "Name", "Category", "Location", "Status",
	"Quantity", "Borrowed", "Available", "Price", "Accounting Date", "Cost Center",
}

// ExportAssets writes the whole catalog with live availability as an xlsx workbook
func (s *AssetService) ExportAssets(ctx context.Context, actor identity.Actor, w io.Writer) error {
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(exportSheetName)
	if err != nil {
		return fmt.Errorf("failed to create export sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range ExportColumns {
		header.AddCell().SetString(col)
	}

	rows := 0
	filter := lending.AssetFilter{Filter: shared.Filter{
		Page:     1,
		PageSize: exportPageSize,
		OrderBy:  "code",
		OrderDir: "asc",
	}}
	for {
		assets, err := s.assetRepo.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			break
		}

		ids := make([]uuid.UUID, len(assets))
		for i := range assets {
			ids[i] = assets[i].ID
		}
		committed, err := s.loanRepo.SumActiveQuantityByAssets(ctx, ids)
		if err != nil {
			return err
		}

		for i := range assets {
			writeAssetRow(sheet.AddRow(), &assets[i], committed[assets[i].ID])
			rows++
		}
		if len(assets) < exportPageSize {
			break
		}
		filter.Page++
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write export workbook: %w", err)
	}

	s.logger.Info("Assets exported",
		zap.Int("rows", rows),
		zap.String("admin_id", actor.UserID.String()))
	return nil
}

func writeAssetRow(row *xlsx.Row, asset *lending.Asset, committed int) {
	availability := lending.NewAvailability(asset.ID, asset.Quantity, committed)

	row.AddCell().SetString(asset.Code)
	row.AddCell().SetString(asset.Name)
	row.AddCell().SetString(asset.Category)
	row.AddCell().SetString(asset.Location)
	row.AddCell().SetString(string(asset.Status))
	row.AddCell().SetInt(asset.Quantity)
	row.AddCell().SetInt(availability.Borrowed)
	row.AddCell().SetInt(availability.Available)

	price := row.AddCell()
	if asset.Price != nil {
		f, _ := asset.Price.Float64()
		price.SetFloat(f)
	}
	accounting := row.AddCell()
	if asset.AccountingDate != nil {
		accounting.SetString(asset.AccountingDate.Format(time.DateOnly))
	}
	row.AddCell().SetString(asset.CostCenter)
}
