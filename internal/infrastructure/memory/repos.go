package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.StockRepository             = (*stockRepo)(nil)
	_ repository.ProductRepository           = (*productRepo)(nil)
	_ repository.InventoryMovementRepository = (*movementRepo)(nil)
	_ repository.ProductionPlanRepository    = (*planRepo)(nil)
	_ repository.JobCardRepository           = (*jobRepo)(nil)
	_ repository.OrderRepository             = (*orderRepo)(nil)
	_ repository.PurchaseOrderRepository     = (*poRepo)(nil)
	_ repository.SequenceRepository          = (*seqRepo)(nil)
)

// view resuelve el estado sobre el que opera un repo: la copia de trabajo de una
// transacción o el último estado confirmado.
type view struct {
	st func() *state
	ro bool
}

func (v view) write() (*state, error) {
	if v.ro {
		return nil, errReadOnly
	}
	return v.st(), nil
}

func reposFor(st func() *state, readOnly bool) repository.TxRepos {
	v := view{st: st, ro: readOnly}
	return repository.TxRepos{
		Stocks:         &stockRepo{v},
		Products:       &productRepo{v},
		Movements:      &movementRepo{v},
		Plans:          &planRepo{v},
		Jobs:           &jobRepo{v},
		Orders:         &orderRepo{v},
		PurchaseOrders: &poRepo{v},
		Sequences:      &seqRepo{v},
	}
}

func stockKey(itemID string, pool entity.StockPool) string {
	return itemID + "|" + string(pool)
}

// --- stock ---

type stockRepo struct{ view }

func (r *stockRepo) Create(_ context.Context, stock *entity.MaterialStock) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	k := stockKey(stock.ItemID, stock.Pool)
	if _, ok := s.stocks[k]; ok {
		return fmt.Errorf("stock %s: %w", k, domain.ErrDuplicate)
	}
	s.stocks[k] = stock.Clone()
	return nil
}

func (r *stockRepo) Get(_ context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	if st, ok := r.st().stocks[stockKey(itemID, pool)]; ok {
		return st.Clone(), nil
	}
	return nil, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	return r.Get(ctx, itemID, pool)
}

func (r *stockRepo) Save(_ context.Context, stock *entity.MaterialStock) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	k := stockKey(stock.ItemID, stock.Pool)
	if _, ok := s.stocks[k]; !ok {
		return domain.NotFound("stock", k)
	}
	s.stocks[k] = stock.Clone()
	return nil
}

func (r *stockRepo) List(_ context.Context, pool entity.StockPool) ([]*entity.MaterialStock, error) {
	var out []*entity.MaterialStock
	for _, st := range r.st().stocks {
		if pool == "" || st.Pool == pool {
			out = append(out, st.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return stockKey(out[i].ItemID, out[i].Pool) < stockKey(out[j].ItemID, out[j].Pool)
	})
	return out, nil
}

func (r *stockRepo) ListForUpdate(ctx context.Context) ([]*entity.MaterialStock, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	return r.List(ctx, "")
}

// --- productos ---

type productRepo struct{ view }

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.BOM = append([]entity.BOMLine(nil), p.BOM...)
	return &c
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("producto %s: %w", p.ID, domain.ErrDuplicate)
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if p, ok := r.st().products[id]; ok {
		return cloneProduct(p), nil
	}
	return nil, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.st().products {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var all []*entity.Product
	for _, p := range r.st().products {
		all = append(all, cloneProduct(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), nil
}

// --- diario ---

type movementRepo struct{ view }

func (r *movementRepo) Create(_ context.Context, movements ...*entity.InventoryMovement) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	for _, m := range movements {
		c := *m
		if c.ID == "" {
			c.ID = fmt.Sprintf("MOV-%d", len(s.movements)+1)
			m.ID = c.ID
		}
		s.movements = append(s.movements, &c)
	}
	return nil
}

func (r *movementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	all := r.st().movements
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ItemID == itemID {
			c := *all[i]
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

func (r *movementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.st().movements {
		if m.TransactionID == transactionID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// --- planes ---

type planRepo struct{ view }

func (r *planRepo) Create(_ context.Context, p *entity.ProductionPlan) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.plans[p.ID]; ok {
		return fmt.Errorf("plan %s: %w", p.ID, domain.ErrDuplicate)
	}
	s.plans[p.ID] = p.Clone()
	return nil
}

func (r *planRepo) GetByID(_ context.Context, id string) (*entity.ProductionPlan, error) {
	if p, ok := r.st().plans[id]; ok {
		return p.Clone(), nil
	}
	return nil, nil
}

func (r *planRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *planRepo) FindOpenForUpdate(_ context.Context, orderID, productID string) (*entity.ProductionPlan, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	var found *entity.ProductionPlan
	for _, p := range r.st().plans {
		if p.OrderID != orderID || p.ProductID != productID || !p.Open() {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			found = p
		}
	}
	if found == nil {
		return nil, nil
	}
	return found.Clone(), nil
}

func (r *planRepo) Update(_ context.Context, p *entity.ProductionPlan) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.plans[p.ID]; !ok {
		return domain.NotFound("plan", p.ID)
	}
	s.plans[p.ID] = p.Clone()
	return nil
}

func (r *planRepo) Delete(_ context.Context, id string) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	delete(s.plans, id)
	return nil
}

func (r *planRepo) ListPending(_ context.Context) ([]*entity.ProductionPlan, error) {
	var out []*entity.ProductionPlan
	for _, p := range r.st().plans {
		if p.PlannedQty.LessThan(p.TotalQtyToMake) {
			out = append(out, p.Clone())
		}
	}
	sortPlans(out)
	return out, nil
}

func (r *planRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.ProductionPlan, error) {
	var out []*entity.ProductionPlan
	for _, p := range r.st().plans {
		if p.OrderID == orderID {
			out = append(out, p.Clone())
		}
	}
	sortPlans(out)
	return out, nil
}

func sortPlans(list []*entity.ProductionPlan) {
	sort.Slice(list, func(i, j int) bool { return list[i].PlanNumber < list[j].PlanNumber })
}

// --- órdenes de trabajo ---

type jobRepo struct{ view }

func (r *jobRepo) Create(_ context.Context, j *entity.JobCard) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.jobs[j.JobID]; ok {
		return fmt.Errorf("orden de trabajo %s: %w", j.JobID, domain.ErrDuplicate)
	}
	s.jobs[j.JobID] = j.Clone()
	return nil
}

func (r *jobRepo) GetByJobID(_ context.Context, jobID string) (*entity.JobCard, error) {
	if j, ok := r.st().jobs[jobID]; ok {
		return j.Clone(), nil
	}
	return nil, nil
}

func (r *jobRepo) GetForUpdate(ctx context.Context, jobID string) (*entity.JobCard, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	return r.GetByJobID(ctx, jobID)
}

func (r *jobRepo) Update(_ context.Context, j *entity.JobCard) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.jobs[j.JobID]; !ok {
		return domain.NotFound("orden de trabajo", j.JobID)
	}
	s.jobs[j.JobID] = j.Clone()
	return nil
}

func (r *jobRepo) Delete(_ context.Context, jobID string) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	delete(s.jobs, jobID)
	return nil
}

func (r *jobRepo) List(_ context.Context, f repository.JobCardFilter) ([]*entity.JobCard, error) {
	var out []*entity.JobCard
	for _, j := range r.st().jobs {
		if f.Match(j) {
			out = append(out, j.Clone())
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].JobID < out[k].JobID })
	return out, nil
}

// --- órdenes de venta ---

type orderRepo struct{ view }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.orders[o.OrderNumber]; ok {
		return fmt.Errorf("orden %s: %w", o.OrderNumber, domain.ErrDuplicate)
	}
	s.orders[o.OrderNumber] = o.Clone()
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	for _, o := range r.st().orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return nil, nil
}

func (r *orderRepo) GetByNumber(_ context.Context, orderNumber string) (*entity.Order, error) {
	if o, ok := r.st().orders[orderNumber]; ok {
		return o.Clone(), nil
	}
	return nil, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, orderNumber string) (*entity.Order, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	return r.GetByNumber(ctx, orderNumber)
}

func (r *orderRepo) Update(_ context.Context, o *entity.Order) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.orders[o.OrderNumber]; !ok {
		return domain.NotFound("orden", o.OrderNumber)
	}
	s.orders[o.OrderNumber] = o.Clone()
	return nil
}

// --- órdenes de compra ---

type poRepo struct{ view }

func (r *poRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.pos[po.PONumber]; ok {
		return fmt.Errorf("orden de compra %s: %w", po.PONumber, domain.ErrDuplicate)
	}
	if po.JobID != "" {
		for _, other := range s.pos {
			if other.JobID == po.JobID {
				return fmt.Errorf("orden de compra para %s: %w", po.JobID, domain.ErrDuplicate)
			}
		}
	}
	s.pos[po.PONumber] = po.Clone()
	return nil
}

func (r *poRepo) GetByJobID(_ context.Context, jobID string) (*entity.PurchaseOrder, error) {
	for _, po := range r.st().pos {
		if jobID != "" && po.JobID == jobID {
			return po.Clone(), nil
		}
	}
	return nil, nil
}

func (r *poRepo) GetByNumber(_ context.Context, poNumber string) (*entity.PurchaseOrder, error) {
	if po, ok := r.st().pos[poNumber]; ok {
		return po.Clone(), nil
	}
	return nil, nil
}

func (r *poRepo) GetForUpdate(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error) {
	if _, err := r.write(); err != nil {
		return nil, err
	}
	return r.GetByNumber(ctx, poNumber)
}

func (r *poRepo) List(_ context.Context, status string) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, po := range r.st().pos {
		if status == "" || po.Status == status {
			out = append(out, po.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PONumber > out[j].PONumber
	})
	return out, nil
}

func (r *poRepo) Update(_ context.Context, po *entity.PurchaseOrder) error {
	s, err := r.write()
	if err != nil {
		return err
	}
	if _, ok := s.pos[po.PONumber]; !ok {
		return domain.NotFound("orden de compra", po.PONumber)
	}
	s.pos[po.PONumber] = po.Clone()
	return nil
}

// --- secuencias ---

type seqRepo struct{ view }

func (r *seqRepo) Next(_ context.Context, prefix string) (int64, error) {
	s, err := r.write()
	if err != nil {
		return 0, err
	}
	s.seq[prefix]++
	return s.seq[prefix], nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
