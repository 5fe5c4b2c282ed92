package models

// ErrInferenceUnavailable - нормализованный код ошибки внешнего движка инференса
const ErrInferenceUnavailable = "inference_unavailable"

// InferenceResult - результат вызова движка инференса.
// Ошибка движка - это данные, а не сбой пайплайна: при неудаче заполняются
// Error и Raw, а PredictedLabel и RiskScore остаются пустыми.
type InferenceResult struct {
	PredictedLabel RiskLevel `json:"predicted_risk_level,omitempty"`
	RiskScore      float64   `json:"risk_score"`
	Error          string    `json:"error,omitempty"`
	Raw            string    `json:"raw,omitempty"`
}

// OK сообщает, завершился ли инференс успешно
func (r InferenceResult) OK() bool {
	return r.Error == ""
}
