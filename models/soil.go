package models

// SoilRecord 土壤检测记录，对应 soil_health 表中的一行
type SoilRecord struct {
	RecordNo        int64    `json:"recordNo"`
	FarmLocation    string   `json:"farmLocation"`
	TestDate        Date     `json:"testDate"`
	NitrogenLevel   *float64 `json:"nitrogenLevel"`
	PhosphorusLevel *float64 `json:"phosphorusLevel"`
	PotassiumLevel  *float64 `json:"potassiumLevel"`
	PHLevel         *float64 `json:"phLevel"`
	MoistureContent *float64 `json:"moistureContent"`
}

// SoilInput 手工录入的一条记录，缺省的数值按 0 处理
type SoilInput struct {
	FarmLocation    string  `json:"farmLocation"`
	TestDate        Date    `json:"testDate"`
	NitrogenLevel   float64 `json:"nitrogenLevel"`
	PhosphorusLevel float64 `json:"phosphorusLevel"`
	PotassiumLevel  float64 `json:"potassiumLevel"`
	PHLevel         float64 `json:"phLevel"`
	MoistureContent float64 `json:"moistureContent"`
}

// Record 把录入转换成待写入的记录
func (in SoilInput) Record() SoilRecord {
	return SoilRecord{
		FarmLocation:    in.FarmLocation,
		TestDate:        in.TestDate,
		NitrogenLevel:   Float(in.NitrogenLevel),
		PhosphorusLevel: Float(in.PhosphorusLevel),
		PotassiumLevel:  Float(in.PotassiumLevel),
		PHLevel:         Float(in.PHLevel),
		MoistureContent: Float(in.MoistureContent),
	}
}

// Float 返回 v 的指针
func Float(v float64) *float64 { return &v }

// ColumnLabels 表格和导出使用的列名
var ColumnLabels = []string{
	"Record No", "Farm Location", "Test Date",
	"Nitrogen Level", "Phosphorus Level", "Potassium Level",
	"pH Level", "Moisture Content",
}
