package models

import "encoding/json"

// RiskLevel - классификация риска, которую возвращает модель
type RiskLevel string

const (
	RiskSafe      RiskLevel = "Safe"
	RiskCaution   RiskLevel = "Caution"
	RiskDangerous RiskLevel = "Dangerous"
)

// Названия пяти обязательных числовых признаков
const (
	FieldTideHeight    = "tide_height"
	FieldWindSpeed     = "wind_speed"
	FieldSeaTemp       = "sea_temp"
	FieldRainfall      = "rainfall"
	FieldMangroveIndex = "mangrove_index"
)

// FeatureSet - набор наблюдений за окружающей средой для одной точки побережья.
// Пять числовых полей обязательны: нулевое значение допустимо, отсутствие поля - нет,
// поэтому они представлены указателями. Неизвестные поля сохраняются в Extra
// и передаются модели без изменений.
type FeatureSet struct {
	TideHeight    *float64 `json:"tide_height"`
	WindSpeed     *float64 `json:"wind_speed"`
	SeaTemp       *float64 `json:"sea_temp"`
	Rainfall      *float64 `json:"rainfall"`
	MangroveIndex *float64 `json:"mangrove_index"`

	PastEvent  string `json:"past_event,omitempty"`
	RegionName string `json:"region_name,omitempty"`
	TideZone   string `json:"tide_zone,omitempty"`
	TimeStamp  string `json:"time_stamp,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// featureSetAlias позволяет использовать стандартную сериализацию без рекурсии
type featureSetAlias FeatureSet

// MissingNumericFields возвращает имена отсутствующих обязательных числовых полей
func (f *FeatureSet) MissingNumericFields() []string {
	missing := make([]string, 0)
	if f.TideHeight == nil {
		missing = append(missing, FieldTideHeight)
	}
	if f.WindSpeed == nil {
		missing = append(missing, FieldWindSpeed)
	}
	if f.SeaTemp == nil {
		missing = append(missing, FieldSeaTemp)
	}
	if f.Rainfall == nil {
		missing = append(missing, FieldRainfall)
	}
	if f.MangroveIndex == nil {
		missing = append(missing, FieldMangroveIndex)
	}
	return missing
}

// MarshalJSON сериализует известные поля и добавляет к ним поля из Extra
func (f FeatureSet) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(featureSetAlias(f))
	if err != nil {
		return nil, err
	}
	if len(f.Extra) == 0 {
		return base, nil
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range f.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON разбирает известные поля и складывает остальные в Extra
func (f *FeatureSet) UnmarshalJSON(data []byte) error {
	var alias featureSetAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, known := range []string{
		FieldTideHeight, FieldWindSpeed, FieldSeaTemp, FieldRainfall, FieldMangroveIndex,
		"past_event", "region_name", "tide_zone", "time_stamp",
	} {
		delete(raw, known)
	}
	if len(raw) > 0 {
		alias.Extra = raw
	}

	*f = FeatureSet(alias)
	return nil
}
