package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OpeningLotID lote por defecto del stock inicial.
const OpeningLotID = "OPENING-STOCK"

// LedgerUseCase alta de materiales y productos, recepciones, débitos, créditos y reservas
// sobre el libro de materiales. Toda mutación corre dentro de TxRunner con bloqueo de fila.
type LedgerUseCase struct {
	txRunner ports.TxRunner
	repos    repository.TxRepos // lecturas fuera de transacción
	log      zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner ports.TxRunner, repos repository.TxRepos, log zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, repos: repos, log: log}
}

// MaterialInput alta de una materia prima con lote de apertura opcional.
type MaterialInput struct {
	MaterialID     string
	Name           string
	Unit           string
	CostPerUnit    decimal.Decimal
	AvgConsumption decimal.Decimal
	LeadTimeDays   int
	SafetyStock    decimal.Decimal
	OpeningQty     decimal.Decimal
	OpeningLot     string
	ReceivedAt     time.Time
}

// RegisterMaterial crea el registro RAW de una materia prima.
func (uc *LedgerUseCase) RegisterMaterial(ctx context.Context, in MaterialInput, actor entity.Actor) (*entity.MaterialStock, error) {
	if in.Name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.OpeningQty.IsNegative() || in.SafetyStock.IsNegative() || in.AvgConsumption.IsNegative() || in.LeadTimeDays < 0 {
		return nil, domain.Invalid("stock", "valores negativos no permitidos")
	}
	if in.MaterialID == "" {
		in.MaterialID = uuid.New().String()
	}
	now := time.Now()
	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = now
	}
	if in.OpeningLot == "" {
		in.OpeningLot = OpeningLotID
	}

	stock := &entity.MaterialStock{
		ID:             uuid.New().String(),
		ItemID:         in.MaterialID,
		Pool:           entity.PoolRaw,
		Name:           in.Name,
		Unit:           in.Unit,
		CostPerUnit:    in.CostPerUnit,
		AvgConsumption: in.AvgConsumption,
		LeadTimeDays:   in.LeadTimeDays,
		SafetyStock:    in.SafetyStock,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.OpeningQty.IsPositive() {
		stock.Lots = []entity.Lot{{LotID: in.OpeningLot, Quantity: in.OpeningQty, ReceivedAt: in.ReceivedAt}}
	}
	inventory.ApplyHealth(stock)

	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		if err := r.Stocks.Create(ctx, stock); err != nil {
			return err
		}
		if !in.OpeningQty.IsPositive() {
			return nil
		}
		return r.Movements.Create(ctx, &entity.InventoryMovement{
			TransactionID: OpeningLotID,
			ItemID:        stock.ItemID,
			Pool:          stock.Pool,
			LotID:         in.OpeningLot,
			Type:          entity.MovementTypeIN,
			Quantity:      in.OpeningQty,
			UnitCost:      in.CostPerUnit,
			TotalCost:     in.OpeningQty.Mul(in.CostPerUnit),
			Reason:        "stock inicial",
			Date:          now,
			CreatedBy:     actor.Label(),
		})
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}

// ProductInput alta de producto con su BOM. Los parámetros de salud aplican al pool terminado.
type ProductInput struct {
	ProductID          string
	SKU                string
	Name               string
	Category           string
	RequiresAssemblyQC bool
	BOM                []entity.BOMLine
	AvgConsumption     decimal.Decimal
	LeadTimeDays       int
	SafetyStock        decimal.Decimal
}

// RegisterProduct guarda el producto y crea sus pools FINISHED y SEMI_FINISHED en la misma transacción.
func (uc *LedgerUseCase) RegisterProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if in.Name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.SKU == "" {
		return nil, domain.Invalid("sku", "requerido")
	}
	for i, line := range in.BOM {
		if line.MaterialID == "" {
			return nil, domain.Invalid(fmt.Sprintf("bom[%d].material_id", i), "requerido")
		}
		if !line.QtyPerUnit.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("bom[%d].qty_per_unit", i), "debe ser mayor que cero")
		}
	}
	if in.ProductID == "" {
		in.ProductID = uuid.New().String()
	}
	now := time.Now()
	product := &entity.Product{
		ID:                 in.ProductID,
		SKU:                in.SKU,
		Name:               in.Name,
		Category:           in.Category,
		RequiresAssemblyQC: in.RequiresAssemblyQC,
		BOM:                in.BOM,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		if existing, err := r.Products.GetBySKU(ctx, in.SKU); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("sku %s: %w", in.SKU, domain.ErrDuplicate)
		}
		for _, line := range in.BOM {
			st, err := r.Stocks.Get(ctx, line.MaterialID, entity.PoolRaw)
			if err != nil {
				return err
			}
			if st == nil {
				return domain.NotFound("material", line.MaterialID)
			}
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		for _, pool := range []entity.StockPool{entity.PoolFinished, entity.PoolSemiFinished} {
			stock := &entity.MaterialStock{
				ID:        uuid.New().String(),
				ItemID:    product.ID,
				Pool:      pool,
				Name:      product.Name,
				Unit:      "unidad",
				CreatedAt: now,
				UpdatedAt: now,
			}
			if pool == entity.PoolFinished {
				stock.AvgConsumption = in.AvgConsumption
				stock.LeadTimeDays = in.LeadTimeDays
				stock.SafetyStock = in.SafetyStock
			}
			inventory.ApplyHealth(stock)
			if err := r.Stocks.Create(ctx, stock); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ReceiptInput recepción de mercancía en un pool. UnitCost opcional recalcula costo promedio.
type ReceiptInput struct {
	ItemID     string
	Pool       entity.StockPool
	Quantity   decimal.Decimal
	LotID      string
	UnitCost   *decimal.Decimal
	ReceivedAt time.Time
	Reference  string
}

// ReceiveMaterial acredita una recepción. Sin lotID se genera LOT-<n> con la secuencia del store.
func (uc *LedgerUseCase) ReceiveMaterial(ctx context.Context, in ReceiptInput, actor entity.Actor) (*entity.MaterialStock, error) {
	stock, _, err := uc.receive(ctx, in, actor)
	return stock, err
}

// receive igual que ReceiveMaterial pero devuelve además el lote acreditado.
func (uc *LedgerUseCase) receive(ctx context.Context, in ReceiptInput, actor entity.Actor) (*entity.MaterialStock, string, error) {
	if in.Pool == "" {
		in.Pool = entity.PoolRaw
	}
	if !in.Pool.Valid() {
		return nil, "", domain.Invalid("pool", "desconocido")
	}
	if in.ItemID == "" {
		return nil, "", domain.Invalid("item_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return nil, "", domain.Invalid("quantity", "debe ser mayor que cero")
	}
	at := in.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}

	var out *entity.MaterialStock
	var lotID string
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		lotID = in.LotID
		if lotID == "" {
			var err error
			if lotID, err = nextLotID(ctx, r); err != nil {
				return err
			}
		}
		ref := in.Reference
		if ref == "" {
			ref = lotID
		}
		stock, err := lockStock(ctx, r, in.ItemID, in.Pool)
		if err != nil {
			return err
		}
		if err := CreditLocked(ctx, r, stock, in.Quantity, lotID, in.UnitCost, Entry{
			Reference: ref, Reason: "recepción", Actor: actor.Label(), At: at,
		}); err != nil {
			return err
		}
		out = stock
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, lotID, nil
}

// nextLotID LOT-<n> con la secuencia del store.
func nextLotID(ctx context.Context, r repository.TxRepos) (string, error) {
	n, err := r.Sequences.Next(ctx, "LOT")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LOT-%06d", n), nil
}

// DebitInput salida manual del libro.
type DebitInput struct {
	ItemID       string
	Pool         entity.StockPool
	Quantity     decimal.Decimal
	PreferredLot string
	Reference    string
	Reason       string
}

// Debit salida FIFO (o del lote indicado) fuera del flujo de órdenes de trabajo.
func (uc *LedgerUseCase) Debit(ctx context.Context, in DebitInput, actor entity.Actor) ([]entity.Pick, error) {
	if in.Pool == "" {
		in.Pool = entity.PoolRaw
	}
	if !in.Pool.Valid() {
		return nil, domain.Invalid("pool", "desconocido")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if in.Reason == "" {
		in.Reason = "salida manual"
	}
	var picks []entity.Pick
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		var err error
		picks, err = DebitInTx(ctx, r, in.ItemID, in.Pool, in.Quantity, in.PreferredLot, Entry{
			Reference: in.Reference, Reason: in.Reason, Actor: actor.Label(), At: time.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return picks, nil
}

// Reserve aparta stock terminado para una línea de orden de venta.
// Requiere Available >= qty y no asignar más de lo pedido.
func (uc *LedgerUseCase) Reserve(ctx context.Context, orderNumber, productID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		order, err := r.Orders.GetForUpdate(ctx, orderNumber)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("orden", orderNumber)
		}
		if order.Status == entity.OrderDispatched {
			return &domain.StaleStateError{Entity: "orden", ID: orderNumber, Current: order.Status}
		}
		i := order.Item(productID)
		if i < 0 {
			return domain.Invalid("product_id", "no pertenece a la orden")
		}
		item := &order.Items[i]
		if item.QtyAllocated.Add(qty).GreaterThan(item.QtyOrdered) {
			return domain.Invalid("quantity", "supera la cantidad pedida")
		}
		stock, err := lockStock(ctx, r, productID, entity.PoolFinished)
		if err != nil {
			return err
		}
		if available := stock.Available(); available.LessThan(qty) {
			return &domain.InsufficientStockError{Shortfalls: []domain.Shortfall{{
				ItemID: productID, Name: stock.Name, Required: qty, Available: available,
			}}}
		}
		now := time.Now()
		stock.Reserved = stock.Reserved.Add(qty)
		stock.UpdatedAt = now
		if err := r.Stocks.Save(ctx, stock); err != nil {
			return err
		}
		item.QtyAllocated = item.QtyAllocated.Add(qty)
		order.UpdatedAt = now
		return r.Orders.Update(ctx, order)
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("order_id", orderNumber).
		Str("product_id", productID).
		Str("qty", qty.String()).
		Msg("stock terminado reservado")
	return nil
}

// GetStock lectura puntual.
func (uc *LedgerUseCase) GetStock(ctx context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	if pool == "" {
		pool = entity.PoolRaw
	}
	stock, err := uc.repos.Stocks.Get(ctx, itemID, pool)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.NotFound("stock "+string(pool), itemID)
	}
	return stock, nil
}

// ListStocks snapshot de un pool (vacío = todos), ordenado por item.
func (uc *LedgerUseCase) ListStocks(ctx context.Context, pool entity.StockPool) ([]*entity.MaterialStock, error) {
	if pool != "" && !pool.Valid() {
		return nil, domain.Invalid("pool", "desconocido")
	}
	list, err := uc.repos.Stocks.List(ctx, pool)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ItemID != list[j].ItemID {
			return list[i].ItemID < list[j].ItemID
		}
		return list[i].Pool < list[j].Pool
	})
	return list, nil
}

// ListMovements diario de un item, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repos.Movements.ListByItem(ctx, itemID, limit, offset)
}

// ListProducts catálogo paginado con BOM.
func (uc *LedgerUseCase) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repos.Products.List(ctx, limit, offset)
}
