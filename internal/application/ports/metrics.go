package ports

// Metrics puerto de métricas operativas del núcleo de producción.
type Metrics interface {
	KittingIssued(jobType string)
	KittingShortfall(materials int)
	StageAdvanced(stage string)
	QCDecision(gate int, decision string)
	Dispatched(lines int)
}

// NopMetrics descarta todo; útil en tests y en la CLI.
type NopMetrics struct{}

func (NopMetrics) KittingIssued(string)   {}
func (NopMetrics) KittingShortfall(int)   {}
func (NopMetrics) StageAdvanced(string)   {}
func (NopMetrics) QCDecision(int, string) {}
func (NopMetrics) Dispatched(int)         {}
