package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"go-soilhealth/models"
	"go-soilhealth/utils"
)

const exportSheet = "Soil Records"

// ExportSoilRecords 以 xlsx 导出与表格相同的记录
func (c *SoilController) ExportSoilRecords(ctx *gin.Context) {
	limit, err := parseLimit(ctx.Query("limit"), c.Service.Limits().MaxLimit)
	if err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	res := c.Service.FetchRecords(ctx.Request.Context(), limit)
	if res.Notification != nil {
		utils.Notify(ctx, *res.Notification, http.StatusOK, nil)
		return
	}

	f, err := BuildWorkbook(res.Records)
	if err != nil {
		utils.InternalServerError(ctx, "Failed to generate Excel file")
		return
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		utils.InternalServerError(ctx, "Failed to write Excel file")
		return
	}

	filename := fmt.Sprintf("soil_records_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buffer.Bytes())
}

// BuildWorkbook 生成单工作表的 xlsx：第一行为列名，之后每行一条记录
func BuildWorkbook(records []models.SoilRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	for col, label := range models.ColumnLabels {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, label); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(models.ColumnLabels), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(models.ColumnLabels))
	if err := f.SetColWidth(exportSheet, "A", lastCol, 18); err != nil {
		return nil, err
	}

	for i, rec := range records {
		row := []interface{}{
			rec.RecordNo, rec.FarmLocation, rec.TestDate.String(),
			cellFloat(rec.NitrogenLevel), cellFloat(rec.PhosphorusLevel), cellFloat(rec.PotassiumLevel),
			cellFloat(rec.PHLevel), cellFloat(rec.MoistureContent),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// cellFloat 空值写成空单元格
func cellFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
