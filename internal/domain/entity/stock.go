package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StockPool pool de inventario al que pertenece un registro de stock.
type StockPool string

const (
	PoolRaw          StockPool = "RAW"           // materia prima
	PoolFinished     StockPool = "FINISHED"      // producto terminado (bodega)
	PoolSemiFinished StockPool = "SEMI_FINISHED" // producto en proceso tras QC de ensamble
)

// Valid indica si el pool pertenece al vocabulario.
func (p StockPool) Valid() bool {
	return p == PoolRaw || p == PoolFinished || p == PoolSemiFinished
}

// Estados de salud del stock (presentacionales).
const (
	HealthCritical = "CRITICAL"
	HealthMedium   = "MEDIUM"
	HealthOptimal  = "OPTIMAL"
	HealthExcess   = "EXCESS"
)

// Lot cantidad trazable recibida en un momento dado.
type Lot struct {
	LotID      string
	Quantity   decimal.Decimal
	ReceivedAt time.Time
}

// MaterialStock registro de stock de una materia prima o del pool terminado/semiterminado de un producto.
// La existencia (OnHand) se calcula siempre desde los lotes; no hay contador duplicado.
type MaterialStock struct {
	ID             string
	ItemID         string // materialID o productID según el pool
	Pool           StockPool
	Name           string
	Unit           string
	CostPerUnit    decimal.Decimal // costo promedio ponderado
	AvgConsumption decimal.Decimal // consumo diario promedio
	LeadTimeDays   int
	SafetyStock    decimal.Decimal
	StockAtLeast   decimal.Decimal // punto de reorden calculado
	Health         string
	Reserved       decimal.Decimal
	Lots           []Lot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OnHand existencia física: suma de los lotes.
func (s *MaterialStock) OnHand() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lots {
		total = total.Add(l.Quantity)
	}
	return total
}

// Available existencia no comprometida.
func (s *MaterialStock) Available() decimal.Decimal {
	return s.OnHand().Sub(s.Reserved)
}

// Lot devuelve el índice del lote con ese id, o -1.
func (s *MaterialStock) Lot(lotID string) int {
	for i, l := range s.Lots {
		if l.LotID == lotID {
			return i
		}
	}
	return -1
}

// FIFO devuelve los índices de los lotes en orden de recepción ascendente
// (desempate por lotID para que el orden sea determinista).
func (s *MaterialStock) FIFO() []int {
	idx := make([]int, len(s.Lots))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		la, lb := s.Lots[idx[a]], s.Lots[idx[b]]
		if !la.ReceivedAt.Equal(lb.ReceivedAt) {
			return la.ReceivedAt.Before(lb.ReceivedAt)
		}
		return la.LotID < lb.LotID
	})
	return idx
}

// Clone copia profunda (los lotes no se comparten).
func (s *MaterialStock) Clone() *MaterialStock {
	c := *s
	c.Lots = append([]Lot(nil), s.Lots...)
	return &c
}

// Pick línea de un registro de picking: qué lote y cuánto se consumió.
type Pick struct {
	ItemID   string          `json:"item_id"`
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SemiFinishedLotID lote semiterminado asociado a una orden de trabajo.
func SemiFinishedLotID(jobID string) string { return "SFG-" + jobID }

// FinishedLotID lote de producto terminado generado por una orden de trabajo.
func FinishedLotID(jobID string) string { return "FG-" + jobID }
